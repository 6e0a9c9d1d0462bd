package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"char64"
	"char64/charset"
)

const defaultDB = "char64.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newConverter(c *cli.Context) (*char64.Converter, *char64.HistoryDB, error) {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	db, err := char64.NewHistoryDB(c.String("db"))
	if err != nil {
		return nil, nil, err
	}

	return char64.New(db, logger), db, nil
}

func optionsFromFlags(c *cli.Context) (char64.Options, error) {
	opts := char64.DefaultOptions()

	opts.Dither = !c.Bool("no-dither")
	opts.Perceptual = !c.Bool("rgb")
	opts.Adaptive = c.Bool("adaptive")
	opts.Invert = c.Bool("invert")
	opts.Contrast = c.Float64("contrast")
	opts.Brightness = c.Float64("brightness")
	opts.Preview = c.Bool("preview")
	opts.OutDir = c.String("out-dir")

	threshold := c.Int("threshold")
	if threshold < 0 || threshold > 255 {
		return opts, fmt.Errorf("threshold %d out of range 0-255", threshold)
	}
	opts.Threshold = uint8(threshold)

	if c.Bool("average-luma") {
		opts.Luma = charset.Average
	}

	return opts, nil
}

func main() {
	app := cli.NewApp()

	app.Name = "char64"
	app.Usage = "Convert images to C64 character set data"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"CHAR64_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to conversion history database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "convert",
			Usage:     "Convert an image or a directory of images",
			ArgsUsage: "FILE|DIRECTORY",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "out-dir",
					Aliases: []string{"o"},
					Usage:   "directory for generated headers (default: next to the source)",
				},
				&cli.BoolFlag{
					Name:  "no-dither",
					Usage: "disable Floyd-Steinberg dithering",
				},
				&cli.BoolFlag{
					Name:  "rgb",
					Usage: "match colors by RGB distance instead of CIELAB",
				},
				&cli.BoolFlag{
					Name:  "adaptive",
					Usage: "derive a 16 color palette from the image instead of the builtin C64 colors",
				},
				&cli.IntFlag{
					Name:    "threshold",
					Aliases: []string{"t"},
					Value:   charset.DefaultThreshold,
					Usage:   "luminance threshold (0-255) for foreground bits",
				},
				&cli.BoolFlag{
					Name:    "invert",
					Aliases: []string{"i"},
					Usage:   "light pixels become foreground",
				},
				&cli.BoolFlag{
					Name:  "average-luma",
					Usage: "use plain channel average instead of Rec.601 luminance",
				},
				&cli.Float64Flag{
					Name:    "contrast",
					Aliases: []string{"c"},
					Value:   1.0,
					Usage:   "contrast pre-adjustment, >1 means more contrast",
				},
				&cli.Float64Flag{
					Name:    "brightness",
					Aliases: []string{"b"},
					Value:   1.0,
					Usage:   "brightness pre-adjustment, >1 means brighter",
				},
				&cli.BoolFlag{
					Name:  "preview",
					Usage: "also write the quantized image as PNG",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "concurrent conversions in directory mode",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				opts, err := optionsFromFlags(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				conv, db, err := newConverter(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				target := c.Args().First()
				info, err := os.Stat(target)
				if err != nil {
					return cli.Exit(err, 1)
				}

				if info.IsDir() {
					if err := conv.ConvertDir(target, opts, c.Int("workers")); err != nil {
						return cli.Exit(err, 1)
					}
					return nil
				}

				result, err := conv.Convert(target, opts)
				if err != nil {
					return cli.Exit(err, 1)
				}
				fmt.Printf("%s: %d unique patterns\n", result.Source, result.Patterns)

				return nil
			},
		},
		{
			Name:  "history",
			Usage: "List recorded conversions",
			Action: func(c *cli.Context) error {
				_, db, err := newConverter(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				entries, err := db.List()
				if err != nil {
					return cli.Exit(err, 1)
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "CREATED\tSOURCE\tPATTERNS\tOPTIONS\tSHA1")
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.8s\n", e.Created.Format("2006-01-02 15:04:05"), e.Source, e.Patterns, e.Options, e.SHA1)
				}

				return w.Flush()
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
