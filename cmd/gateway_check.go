package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"course-checkout-api/internal/config"
	"course-checkout-api/internal/gateway"
	"course-checkout-api/internal/utils"
)

// gatewayCheckCmd 用配置中的 API key 探测网关：账户信息与 PIX 密钥
func gatewayCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway-check",
		Short: "Verify the payment gateway credentials (account and PIX keys)",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, _ := cmd.Flags().GetString("env")
			cfg, err := config.Load(env)
			if err != nil {
				return err
			}
			if cfg.Asaas.APIKey == "" {
				return fmt.Errorf("missing required config: asaas.apiKey")
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")

			log := logrus.New()
			log.SetOutput(io.Discard)
			gw := gateway.NewClient(cfg.Asaas.BaseURL, cfg.Asaas.APIKey, utils.NewHTTPClient(timeout), log)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return gatewayCheck(ctx, gw, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Duration("timeout", 15*time.Second, "request timeout")
	return cmd
}

type gatewayProber interface {
	MyAccount(ctx context.Context) (*gateway.Account, error)
	PixAddressKeys(ctx context.Context) ([]gateway.PixAddressKey, error)
}

func gatewayCheck(ctx context.Context, gw gatewayProber, out io.Writer) error {
	acc, err := gw.MyAccount(ctx)
	if err != nil {
		return fmt.Errorf("myAccount: %w", err)
	}
	fmt.Fprintf(out, "account: %s <%s>\n", acc.Name, acc.Email)

	keys, err := gw.PixAddressKeys(ctx)
	if err != nil {
		return fmt.Errorf("pix/addressKeys: %w", err)
	}
	if len(keys) == 0 {
		fmt.Fprintln(out, "pix keys: none (PIX charges will fail)")
		return nil
	}
	b, _ := json.MarshalIndent(keys, "", "  ")
	fmt.Fprintf(out, "pix keys (%d):\n%s\n", len(keys), b)
	return nil
}
