package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/ifcnotes"
	"github.com/tsawler/ifcnotes/atlas"
	"github.com/tsawler/ifcnotes/config"
	"github.com/tsawler/ifcnotes/ocr"
)

const usage = `ifcnotes - convert IFC annotation texts into a textured glTF scene

USAGE:
  ifcnotes [global flags] <command> [flags] <model.ifc>

COMMANDS:
  convert   Write the texts as a binary glTF (.glb), optionally with the atlas PNG
            and an HTML report
  texts     Print every text with its world-space corners
  dump      Print the element tree of every annotation, or of one element (-id)
  verify    Render the texts and read them back with Tesseract (needs -tags ocr)
  fonts     List the font families that can be selected with -font

GLOBAL FLAGS:
  -config FILE  YAML configuration; command flags override it
  -debug        Verbose logging

EXAMPLES:
  ifcnotes convert -font "Noto Sans JP" -o notes.glb house.ifc
  ifcnotes convert -font-file msgothic.ttc -atlas-png atlas.png -report report.html house.ifc
  ifcnotes texts house.ifc
  ifcnotes dump -id 75793 house.ifc
`

// fontFlags are the flags shared by the commands that render texts
type fontFlags struct {
	fs        *flag.FlagSet
	family    *string
	file      *string
	index     *int
	size      *float64
	dpi       *float64
	atlasSize *int
	strict    *bool
	maxDepth  *int
}

func addFontFlags(fs *flag.FlagSet) *fontFlags {
	return &fontFlags{
		fs:        fs,
		family:    fs.String("font", "", "font family (\"Go\" is built in; see the fonts command)"),
		file:      fs.String("font-file", "", "TrueType/OpenType font file or collection"),
		index:     fs.Int("font-index", 0, "face index inside a font collection"),
		size:      fs.Float64("size", config.DefaultFontSize, "font size in points"),
		dpi:       fs.Float64("dpi", config.DefaultDPI, "rendering resolution"),
		atlasSize: fs.Int("atlas-size", config.DefaultAtlasSize, "side length of the texture atlas in pixels"),
		strict:    fs.Bool("strict", false, "fail when texts do not fit on the atlas"),
		maxDepth:  fs.Int("max-depth", config.DefaultMaxDepth, "maximum depth of the element walk"),
	}
}

// apply copies the flags that were given on the command line into cfg
func (f *fontFlags) apply(cfg *config.Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "font":
			cfg.Font.Family = *f.family
			cfg.Font.Path = ""
		case "font-file":
			cfg.Font.Path = *f.file
			cfg.Font.Family = ""
		case "font-index":
			cfg.Font.Index = *f.index
		case "size":
			cfg.Font.Size = *f.size
		case "dpi":
			cfg.Font.DPI = *f.dpi
		case "atlas-size":
			cfg.Atlas.Size = *f.atlasSize
		case "strict":
			cfg.Atlas.Strict = *f.strict
		case "max-depth":
			cfg.Walk.MaxDepth = *f.maxDepth
		}
	})
}

type app struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("ifcnotes", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "YAML configuration file")
	debug := global.Bool("debug", false, "verbose logging")
	global.Usage = func() { fmt.Fprint(stderr, usage) }

	if err := global.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	ifcnotes.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if global.NArg() < 1 {
		global.Usage()
		return errors.New("missing command")
	}

	a := &app{cfg: cfg, stdout: stdout, stderr: stderr}
	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "convert":
		return a.convert(rest)
	case "texts":
		return a.texts(rest)
	case "dump":
		return a.dump(rest)
	case "verify":
		return a.verify(rest)
	case "fonts":
		return a.fonts(rest)
	case "help":
		global.Usage()
		return nil
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// model parses a command's flags and returns its single model argument
func model(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", fmt.Errorf("%s: expected one model file, got %d arguments", fs.Name(), fs.NArg())
	}
	return fs.Arg(0), nil
}

func (a *app) printWarnings(warnings []ifcnotes.Warning) {
	for _, w := range warnings {
		fmt.Fprintln(a.stderr, "warning:", w)
	}
}

func (a *app) convert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fonts := addFontFlags(fs)
	out := fs.String("o", "", "output file (default: model name with .glb)")
	atlasPNG := fs.String("atlas-png", "", "also write the atlas image to this file")
	reportPath := fs.String("report", "", "also write an HTML report to this file")
	yUp := fs.Bool("y-up", false, "export with Y-up axes")
	name := fs.String("name", "", "mesh name")
	progress := fs.Bool("progress", false, "show a progress bar while reading")

	path, err := model(fs, args)
	if err != nil {
		return err
	}
	fonts.apply(a.cfg)
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "atlas-png":
			a.cfg.Export.AtlasPNG = *atlasPNG
		case "report":
			a.cfg.Export.Report = *reportPath
		case "y-up":
			a.cfg.Export.YUp = *yUp
		case "name":
			a.cfg.Export.Name = *name
		}
	})
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	target := *out
	if target == "" {
		target = strings.TrimSuffix(path, filepath.Ext(path)) + ".glb"
	}

	conv := ifcnotes.Open(path).WithConfig(a.cfg)
	if *progress {
		conv = conv.Progress(a.stderr)
	}
	warnings, err := conv.SaveGLB(target)
	a.printWarnings(warnings)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, target)
	return nil
}

func (a *app) texts(args []string) error {
	fs := flag.NewFlagSet("texts", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	path, err := model(fs, args)
	if err != nil {
		return err
	}

	texts, warnings, err := ifcnotes.Open(path).WithConfig(a.cfg).Texts()
	a.printWarnings(warnings)
	if err != nil {
		return err
	}
	for _, t := range texts {
		p, err := t.FaceVertices()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "[%s]:%s,%s,%s,%s\n", t.Literal, p[0], p[1], p[2], p[3])
	}
	return nil
}

func (a *app) dump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	id := fs.Int("id", 0, "instance id to dump instead of all annotations")
	path, err := model(fs, args)
	if err != nil {
		return err
	}

	warnings, err := ifcnotes.Open(path).WithConfig(a.cfg).Dump(a.stdout, *id)
	a.printWarnings(warnings)
	return err
}

func (a *app) verify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fonts := addFontFlags(fs)
	lang := fs.String("lang", "", "Tesseract language(s), e.g. eng+jpn")
	path, err := model(fs, args)
	if err != nil {
		return err
	}
	fonts.apply(a.cfg)
	if *lang != "" {
		a.cfg.OCR.Language = *lang
	}

	client, err := ocr.New()
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.SetLanguage(a.cfg.OCR.Language); err != nil {
		return fmt.Errorf("failed to set OCR language: %w", err)
	}

	res, warnings, err := ifcnotes.Open(path).WithConfig(a.cfg).Verify(client)
	a.printWarnings(warnings)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "checked %d texts, skipped %d, %d mismatches\n", res.Checked, res.Skipped, len(res.Mismatches))
	if !res.OK() {
		return fmt.Errorf("%d texts were not recognized as written", len(res.Mismatches))
	}
	return nil
}

func (a *app) fonts(args []string) error {
	fs := flag.NewFlagSet("fonts", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	families, err := atlas.Families()
	if err != nil {
		return err
	}
	for _, f := range families {
		fmt.Fprintln(a.stdout, f)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "ifcnotes: %v\n", err)
		}
		os.Exit(1)
	}
}
