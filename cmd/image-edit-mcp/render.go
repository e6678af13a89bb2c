package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-edit-mcp/internal/config"
	"github.com/ironsheep/image-edit-mcp/internal/editor"
	"github.com/ironsheep/image-edit-mcp/internal/imaging"
)

type renderFlags struct {
	in         string
	out        string
	preset     string
	filters    []string
	effects    []string
	background string
	crop       string
	format     string
}

func newRenderCmd(root *rootFlags) *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render --in <path|url> --out <file|dir> [--preset p] [--filter k=v]... [--effect k=v]... [--background spec] [--crop x,y,w,h] [--format png|webp]",
		Short: "Edit one image and write the result",
		Long: `Run one editing session end to end: load, apply the preset, filters,
effects and background, crop, and export losslessly.

The preset is applied before individual --filter values, so filters override it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			logger := initLogger(cfg)
			path, err := runRender(cmd.Context(), cfg, logger, &flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.in, "in", "", "Source image path or http(s) URL")
	cmd.Flags().StringVar(&flags.out, "out", "", "Output file, or directory for <source>-edited.<ext>")
	cmd.Flags().StringVar(&flags.preset, "preset", "", "Filter preset to apply first")
	cmd.Flags().StringArrayVar(&flags.filters, "filter", nil, "Filter value as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&flags.effects, "effect", nil, "Effect value as name=value (repeatable)")
	cmd.Flags().StringVar(&flags.background, "background", "", "transparent, #rrggbb, gradient:<preset> or gradient:#rrggbb,#rrggbb")
	cmd.Flags().StringVar(&flags.crop, "crop", "", "Crop rectangle as x,y,width,height in source pixels")
	cmd.Flags().StringVar(&flags.format, "format", "", "png or webp (default from --out extension, then config)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

// runRender performs the edit and returns the path written.
func runRender(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, flags *renderFlags) (string, error) {
	format, err := resolveFormat(flags.format, flags.out, cfg.Export.Format)
	if err != nil {
		return "", err
	}

	cache := imaging.NewImageCache(
		imaging.WithMaxBytes(cfg.Source.MaxBytes),
		imaging.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Source.FetchTimeout)}),
	)
	img, err := cache.LoadSource(ctx, flags.in)
	if err != nil {
		return "", err
	}

	sess := editor.NewSession(editor.Options{
		Logger:      logger,
		StableGrain: cfg.Render.StableGrain,
		GrainSeed:   cfg.Render.GrainSeed,
	})
	sess.Load(img, flags.in)

	if flags.preset != "" {
		if err := sess.ApplyPreset(flags.preset); err != nil {
			return "", err
		}
	}
	for _, kv := range flags.filters {
		name, v, err := parseAssignment(kv)
		if err != nil {
			return "", fmt.Errorf("--filter: %w", err)
		}
		if _, err := sess.SetFilter(name, v); err != nil {
			return "", err
		}
	}
	for _, kv := range flags.effects {
		name, v, err := parseAssignment(kv)
		if err != nil {
			return "", fmt.Errorf("--effect: %w", err)
		}
		if _, err := sess.SetEffect(name, v); err != nil {
			return "", err
		}
	}
	if flags.background != "" {
		bg, err := editor.ParseBackground(flags.background)
		if err != nil {
			return "", err
		}
		sess.SetBackground(bg)
	}
	if flags.crop != "" {
		r, err := parseRegion(flags.crop)
		if err != nil {
			return "", fmt.Errorf("--crop: %w", err)
		}
		if _, err := sess.CropTo(r); err != nil {
			return "", err
		}
	}

	res, err := sess.Export(format)
	if err != nil {
		return "", err
	}

	path := flags.out
	if info, err := os.Stat(path); (err == nil && info.IsDir()) || strings.HasSuffix(path, string(filepath.Separator)) {
		path = filepath.Join(path, res.Filename)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, res.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write output: %w", err)
	}
	logger.WithFields(logrus.Fields{"path": path, "bytes": res.Bytes}).Info("render written")
	return path, nil
}

// resolveFormat picks the export format from the flag, then the output
// extension, then the configured default.
func resolveFormat(flag, out, fallback string) (imaging.Format, error) {
	if flag != "" {
		return imaging.ParseFormat(flag)
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".webp":
		return imaging.FormatWebP, nil
	case ".png":
		return imaging.FormatPNG, nil
	}
	return imaging.ParseFormat(fallback)
}

func parseAssignment(s string) (string, float64, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return "", 0, fmt.Errorf("%q is not name=value", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%q: %w", s, err)
	}
	return strings.TrimSpace(name), v, nil
}

func parseRegion(s string) (editor.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return editor.Region{}, fmt.Errorf("%q is not x,y,width,height", s)
	}
	var vals [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return editor.Region{}, fmt.Errorf("%q: %w", s, err)
		}
		vals[i] = n
	}
	return editor.Region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}
