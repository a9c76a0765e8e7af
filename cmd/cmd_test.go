package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/gateway"
)

type stubProber struct {
	acc     *gateway.Account
	keys    []gateway.PixAddressKey
	accErr  error
	keysErr error
}

func (s stubProber) MyAccount(context.Context) (*gateway.Account, error) { return s.acc, s.accErr }

func (s stubProber) PixAddressKeys(context.Context) ([]gateway.PixAddressKey, error) {
	return s.keys, s.keysErr
}

func TestGatewayCheck(t *testing.T) {
	var out bytes.Buffer
	err := gatewayCheck(context.Background(), stubProber{
		acc:  &gateway.Account{Name: "Escola", Email: "fin@escola.com.br"},
		keys: []gateway.PixAddressKey{{ID: "k1", Key: "fin@escola.com.br", Type: "EMAIL", Status: "ACTIVE"}},
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "account: Escola <fin@escola.com.br>")
	assert.Contains(t, out.String(), "pix keys (1)")
}

func TestGatewayCheckNoKeys(t *testing.T) {
	var out bytes.Buffer
	err := gatewayCheck(context.Background(), stubProber{acc: &gateway.Account{Name: "Escola"}}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "pix keys: none")
}

func TestGatewayCheckAccountError(t *testing.T) {
	err := gatewayCheck(context.Background(), stubProber{accErr: constant.Upstream("unauthorized", nil)}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, constant.KindUpstream, constant.KindOf(err))
}
