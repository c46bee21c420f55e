// cmd/nutrilens/analyze.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nutrilens/internal/gateway"
	"nutrilens/internal/models"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		text     string
		note     string
		mimeType string
	)

	cmd := &cobra.Command{
		Use:   "analyze [image]",
		Short: "Analyze a meal photo or a meal description and print the result as JSON",
		Example: `  nutrilens analyze lunch.jpg --note "shared with a friend"
  nutrilens analyze --text "two eggs on toast"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (text == "") {
				return errors.New("provide either an image path or --text")
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := cmd.Context()
			analyzer, err := newAnalyzer(ctx, cfg, log)
			if err != nil {
				return err
			}

			var result *models.FoodAnalysis
			if text != "" {
				result, err = analyzer.DescribeMeal(ctx, text)
			} else {
				var data []byte
				data, err = os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read image: %w", err)
				}
				if mimeType == "" {
					mimeType = detectImageType(args[0], data)
				}
				result, err = analyzer.AnalyzeFood(ctx, data, mimeType, note)
			}
			if err != nil {
				if gateway.KindOf(err) != 0 {
					return fmt.Errorf("%s (%w)", gateway.UserMessage(err), err)
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Meal description to analyze instead of an image")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Extra context sent with an image")
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "Image MIME type (detected when omitted)")
	return cmd
}

func detectImageType(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); strings.HasPrefix(t, "image/") {
		t, _, _ = strings.Cut(t, ";")
		return t
	}
	return http.DetectContentType(data)
}
