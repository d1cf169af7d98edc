package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/storevoice/internal/config"
	"github.com/nadzzz/storevoice/internal/message"
	"github.com/nadzzz/storevoice/internal/service"
	"github.com/nadzzz/storevoice/internal/session"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <utterance>",
	Short: "Classify one utterance and print the result as JSON",
	Long: `Runs the local rule cascade and product resolution on an utterance, as
POST /classify would, with the catalog products as the current page.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		config.SetupLogging(config.LoggingConfig{Level: "warn", Format: "text"})
		static, err := loadCatalog(cfg.Catalog)
		if err != nil {
			return err
		}

		snap := session.Snapshot{Page: session.Page(flagString(cmd, "page"))}
		snap.UserID = flagString(cmd, "user")
		snap.OnCheckout = snap.Page == session.PageCheckout
		var opts service.Options
		if static != nil {
			snap.Products = static.Products()
			opts.Catalog = static
		}

		svc := service.New(opts)
		defer svc.Close()
		resp := svc.Classify(cmd.Context(), message.NewClassifyRequest(strings.Join(args, " "), snap, len(snap.Products)))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().String("user", "", "classify as this signed-in user")
	classifyCmd.Flags().String("page", string(session.PageProducts), "current page (home, products, cart, checkout, ...)")
}
