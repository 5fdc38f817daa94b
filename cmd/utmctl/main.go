// Command utmctl drives a running utmsync daemon over gRPC.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	syncrpc "github.com/atinyakov/utm-manager/internal/app/server/grpc"
	"github.com/atinyakov/utm-manager/internal/models"
)

// dialFunc opens a connection to the daemon.
type dialFunc func(target string) (grpc.ClientConnInterface, io.Closer, error)

func dialInsecure(target string) (grpc.ClientConnInterface, io.Closer, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, conn, nil
}

type cli struct {
	dial    dialFunc
	target  string
	token   string
	timeout time.Duration
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd(dial dialFunc) *cobra.Command {
	c := &cli{dial: dial}

	root := &cobra.Command{
		Use:           "utmctl",
		Short:         "Control a running utmsync daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.target, "addr", envOr("UTMSYNC_GRPC", "localhost:3200"), "utmsync gRPC address")
	root.PersistentFlags().StringVar(&c.token, "token", os.Getenv("UTMSYNC_TOKEN"), "owner JWT; empty acts as the device owner")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 2*time.Minute, "call timeout")

	root.AddCommand(
		c.simple("sync", "Run a full sync and print the summary", syncrpc.MethodFullSync),
		c.simple("autosync", "Push records newer than the last sync", syncrpc.MethodAutoSync),
		c.simple("state", "Print the phase of the latest sync pass", syncrpc.MethodState),
		c.simple("records", "List local records, newest first", syncrpc.MethodRecords),
		c.simple("reset", "Clear local data of the owner", syncrpc.MethodReset),
		c.shortenCmd(),
	)
	return root
}

func (c *cli) call(cmd *cobra.Command, method string, in any) error {
	conn, closer, err := c.dial(c.target)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.target, err)
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
	defer cancel()
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}

	var out map[string]any
	if err := syncrpc.NewSyncClient(conn).Call(ctx, method, in, &out); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (c *cli) simple(use, short, method string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, method, nil)
		},
	}
}

func (c *cli) shortenCmd() *cobra.Command {
	var req models.ShortenRequest

	cmd := &cobra.Command{
		Use:   "shorten <url>",
		Short: "Shorten a URL through the provider chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.URL = args[0]
			return c.call(cmd, syncrpc.MethodShorten, req)
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "link title for providers that accept it")
	cmd.Flags().StringVar(&req.Description, "description", "", "link description")
	return cmd
}

func main() {
	_ = godotenv.Load()

	cobra.CheckErr(newRootCmd(dialInsecure).Execute())
}
