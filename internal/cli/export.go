package cli

import (
	"github.com/piwi3910/circlepack/internal/export"
	"github.com/spf13/cobra"
)

func exportCommand() *cobra.Command {
	var (
		formats string
		outBase string
		size    int
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export a saved layout",
		Long: `Export a solved layout from a project file (.circlepack.json) or a
JSON result document to one or more formats.`,
		Example: `  circlepack export packing.json --format png,dxf
  circlepack export part.circlepack.json --format all -o out/part`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			fs, err := export.ParseFormats(formats)
			if err != nil {
				return err
			}
			if len(fs) == 0 {
				return errNoFormats
			}
			layout, err := loadLayout(args[0])
			if err != nil {
				return err
			}
			checkLayout(logger, layout)
			if outBase == "" {
				outBase = baseName(args[0])
			}

			prog := newProgress(logger)
			var written []string
			for _, f := range fs {
				path := outBase + f.Extension()
				if f == export.FormatPNG {
					err = export.ExportPNG(path, layout.Config, layout.Result, size)
				} else {
					err = export.Write(path, f, layout.Config, layout.Result)
				}
				if err != nil {
					return err
				}
				written = append(written, path)
			}
			prog.done("Exported")

			printSuccess("Wrote %d files", len(written))
			for _, path := range written {
				printFile(path)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&formats, "format", "png", "export formats: png,svg,dxf,pdf,xlsx,json,labels or all")
	fl.StringVarP(&outBase, "out", "o", "", "base path of exported files (default: input name)")
	fl.IntVar(&size, "size", export.DefaultImageSize, "PNG width and height in pixels")
	return cmd
}
