package dto

// DataResp 查询接口统一包装
type DataResp[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func OK[T any](data T) DataResp[T] {
	return DataResp[T]{Success: true, Data: data}
}

// PageQuery 分页参数
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}
