package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/manga-thumb/backend/internal/logging"
	"github.com/zhouzirui/manga-thumb/backend/internal/render"
)

func newRenderCmd() *cobra.Command {
	var (
		fixturePath string
		outPath     string
		fontDir     string
		templateDir string
		quality     int
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a YAML answer fixture to a JPEG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("fonts") {
				fontDir = cfg.Render.FontDir
			}
			if !cmd.Flags().Changed("templates") {
				templateDir = cfg.Render.TemplateDir
			}
			if !cmd.Flags().Changed("quality") {
				quality = cfg.Render.JPEGQuality
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(level, "console")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			answers, err := loadFixture(fixturePath)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = strings.TrimSuffix(fixturePath, ".yaml") + ".jpg"
			}

			start := time.Now()
			renderer := render.New(render.Config{FontDir: fontDir, TemplateDir: templateDir}, logger)
			result, err := renderer.Render(answers)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}

			if err := writeJPEG(outPath, result, quality); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wrote %s in %s\n", outPath, time.Since(start).Round(time.Millisecond))
			fmt.Fprintf(out, "progress fill: %dpx of %dpx\n", result.FillWidth, render.BarWidth)
			if result.Background != "" {
				fmt.Fprintf(out, "background: %s\n", result.Background)
			}
			for _, fb := range result.Fallbacks {
				fmt.Fprintf(out, "fallback %s %q: %s\n", fb.Kind, fb.Value, fb.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "answer fixture (YAML)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output JPEG path (defaults next to the fixture)")
	cmd.Flags().StringVar(&fontDir, "fonts", "", "font directory (FONT_DIR)")
	cmd.Flags().StringVar(&templateDir, "templates", "", "template background directory (TEMPLATE_DIR)")
	cmd.Flags().IntVar(&quality, "quality", 90, "JPEG quality (JPEG_QUALITY)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log fallbacks at debug level")
	_ = cmd.MarkFlagRequired("fixture")

	return cmd
}

func writeJPEG(path string, result *render.Result, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := render.Encode(w, result.Image, quality); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return f.Close()
}
