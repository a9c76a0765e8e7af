package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/dto"
	coursemodel "course-checkout-api/internal/model/course"
	"course-checkout-api/internal/repo"
	rediskey "course-checkout-api/internal/types/redis-key"
)

const courseCacheTTL = 10 * time.Minute

type CourseReader interface {
	List(ctx context.Context, f repo.CourseFilter) ([]coursemodel.Course, error)
	GetByID(ctx context.Context, id string) (*coursemodel.Course, error)
}

// CourseService 课程只读查询；详情走 Redis 缓存，rdb 为空时直连数据存储
type CourseService struct {
	store CourseReader
	rdb   *redis.Client
	ttl   time.Duration
	sf    singleflight.Group
	log   logrus.FieldLogger
}

func NewCourseService(store CourseReader, rdb *redis.Client, log logrus.FieldLogger) *CourseService {
	return &CourseService{store: store, rdb: rdb, ttl: courseCacheTTL, log: log}
}

func (s *CourseService) List(ctx context.Context, q dto.CourseListQuery) ([]coursemodel.Course, error) {
	f := repo.CourseFilter{
		Pilar:  strings.TrimSpace(q.Pilar),
		Level:  strings.TrimSpace(q.Level),
		Status: strings.TrimSpace(q.Status),
		Search: q.Search,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	var err error
	if f.MinPrice, err = parsePrice(q.MinPrice, "min_price"); err != nil {
		return nil, err
	}
	if f.MaxPrice, err = parsePrice(q.MaxPrice, "max_price"); err != nil {
		return nil, err
	}
	return s.store.List(ctx, f)
}

func parsePrice(v, field string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, constant.Validation(constant.MsgInvalidPayload).WithData(map[string]string{field: v})
	}
	return &d, nil
}

// Get 课程详情，不存在返回 not found
func (s *CourseService) Get(ctx context.Context, id string) (*coursemodel.Course, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, constant.NotFound(constant.MsgCourseNotFound)
	}
	if c := s.fromCache(ctx, id); c != nil {
		return c, nil
	}

	// 同一课程并发未命中只回源一次；回源不跟随首个请求的取消
	v, err, _ := s.sf.Do(id, func() (interface{}, error) {
		fillCtx := context.WithoutCancel(ctx)
		c, err := s.store.GetByID(fillCtx, id)
		if err != nil || c == nil {
			return c, err
		}
		s.toCache(fillCtx, id, c)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	c, _ := v.(*coursemodel.Course)
	if c == nil {
		return nil, constant.NotFound(constant.MsgCourseNotFound)
	}
	return c, nil
}

func (s *CourseService) fromCache(ctx context.Context, id string) *coursemodel.Course {
	if s.rdb == nil {
		return nil
	}
	b, err := s.rdb.Get(ctx, rediskey.Course(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WithError(err).Warn("[Course] 读取缓存失败")
		}
		return nil
	}
	var c coursemodel.Course
	if err := json.Unmarshal(b, &c); err != nil {
		return nil
	}
	return &c
}

func (s *CourseService) toCache(ctx context.Context, id string, c *coursemodel.Course) {
	if s.rdb == nil {
		return
	}
	b, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, rediskey.Course(id), b, s.ttl).Err(); err != nil {
		s.log.WithError(err).Warn("[Course] 写入缓存失败")
	}
}
