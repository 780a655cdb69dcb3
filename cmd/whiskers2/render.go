package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/backwardspy/whiskers2"
	"github.com/backwardspy/whiskers2/internal/colorfile"
	"github.com/backwardspy/whiskers2/internal/config"
	"github.com/backwardspy/whiskers2/internal/engine"
	"github.com/backwardspy/whiskers2/internal/format"
	"github.com/backwardspy/whiskers2/internal/merge"
	"github.com/backwardspy/whiskers2/internal/palette"
)

var errUnformatted = errors.New("some files are not formatted")

func runRender(cmd *cobra.Command, args []string) error {
	tmpl, err := whiskers2.Load(args[0])
	if err != nil {
		return err
	}
	if err := checkVersion(tmpl); err != nil {
		return err
	}

	flavor, err := selectedFlavor()
	if err != nil {
		return err
	}
	overrides, err := loadOverrides()
	if err != nil {
		return err
	}
	p, err := buildPalette()
	if err != nil {
		return err
	}

	e := &engine.Engine{
		Palette:   p,
		OutputDir: flagOutputDir,
		DryRun:    flagDryRun,
		Log:       log,
	}
	body, err := e.Parse(tmpl.Name, tmpl.Body)
	if err != nil {
		return err
	}
	ctx := tmpl.Context(overrides)

	if tmpl.IsMatrix() {
		if flagCheck != "" {
			return fmt.Errorf("--check only applies to single-file templates")
		}
		spec, err := tmpl.Expand(flavor)
		if err != nil {
			return err
		}
		artifacts, err := e.RenderMatrix(body, tmpl.Options.Filename, spec, ctx)
		if err != nil {
			return err
		}
		log.WithFields(map[string]any{"files": len(artifacts)}).Debug("matrix render complete")
		return nil
	}

	var out bytes.Buffer
	if err := e.RenderSingle(&out, body, ctx, flavor); err != nil {
		return err
	}
	if flagCheck != "" {
		return engine.Check(flagCheck, out.Bytes())
	}
	_, err = cmd.OutOrStdout().Write(out.Bytes())
	return err
}

func runCheck(cmd *cobra.Command, args []string) error {
	tmpl, err := whiskers2.Load(args[0])
	if err != nil {
		return err
	}
	if err := checkVersion(tmpl); err != nil {
		return err
	}
	flavor, err := selectedFlavor()
	if err != nil {
		return err
	}
	p, err := buildPalette()
	if err != nil {
		return err
	}

	e := &engine.Engine{Palette: p}
	if _, err := e.Parse(tmpl.Name, tmpl.Body); err != nil {
		return err
	}

	if !tmpl.IsMatrix() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, renders a single file\n", tmpl.Name)
		return nil
	}
	if _, err := e.Parse(tmpl.Name+":filename", tmpl.Options.Filename); err != nil {
		return err
	}
	spec, err := tmpl.Expand(flavor)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, renders %d files\n", tmpl.Name, spec.Count())
	return nil
}

func runPalette(cmd *cobra.Command, args []string) error {
	kind, err := format.ParseKind(flagFormat)
	if err != nil {
		return err
	}
	p, err := buildPalette()
	if err != nil {
		return err
	}
	return format.Encode(cmd.OutOrStdout(), p, kind)
}

func runFmt(cmd *cobra.Command, args []string) error {
	hasErrors := false
	needsFormatting := false

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error(err, "reading "+path)
			hasErrors = true
			continue
		}

		content := string(data)
		formatted, err := format.Format(content)
		if err != nil {
			log.Error(err, "formatting "+path)
			hasErrors = true
			continue
		}

		if formatted == content {
			continue
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		needsFormatting = true

		if !flagFmtCheck {
			if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
				log.Error(err, "writing "+path)
				hasErrors = true
			}
		}
	}

	if hasErrors {
		return fmt.Errorf("fmt failed for some files")
	}
	if flagFmtCheck && needsFormatting {
		return errUnformatted
	}
	return nil
}

func checkVersion(tmpl *whiskers2.Template) error {
	if !tmpl.HasVersion() {
		log.Warn(config.MissingVersionHint(whiskers2.Version))
		return nil
	}
	return tmpl.CheckVersion()
}

func selectedFlavor() (string, error) {
	if flagFlavor == "" {
		return "", nil
	}
	return palette.ParseFlavor(flagFlavor)
}

// loadOverrides combines the overrides file with the literal overrides, the
// literal taking precedence.
func loadOverrides() (map[string]any, error) {
	overrides := map[string]any{}
	if flagOverridesFile != "" {
		fromFile, err := merge.DecodeFile(flagOverridesFile)
		if err != nil {
			return nil, err
		}
		overrides = fromFile
	}
	if flagOverrides != "" {
		literal, err := merge.Decode([]byte(flagOverrides))
		if err != nil {
			return nil, fmt.Errorf("--overrides: %w", err)
		}
		overrides = merge.Apply(overrides, literal)
	}
	return overrides, nil
}

// buildPalette builds the palette with the hex flags and color overrides.
// HCL override files are evaluated against the canonical palette.
func buildPalette() (palette.Palette, error) {
	var overrides *palette.ColorOverrides

	if flagColorOverridesFile != "" {
		canonical, err := palette.Build(palette.Options{})
		if err != nil {
			return palette.Palette{}, err
		}
		fromFile, err := colorfile.Load(flagColorOverridesFile, canonical)
		if err != nil {
			return palette.Palette{}, err
		}
		overrides = fromFile
	}
	if flagColorOverrides != "" {
		literal, err := palette.DecodeColorOverrides([]byte(flagColorOverrides))
		if err != nil {
			return palette.Palette{}, fmt.Errorf("--color-overrides: %w", err)
		}
		overrides = overrides.Combine(literal)
	}

	return palette.Build(palette.Options{
		CapitalizeHex:  flagHexCaps,
		HexPrefix:      flagHexPrefix,
		ColorOverrides: overrides,
	})
}
