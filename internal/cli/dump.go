package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	classinfo "github.com/appsworld/go-classinfo"
	"github.com/appsworld/go-classinfo/pkg/machort"
	"github.com/appsworld/go-classinfo/types/objc"
)

// NewDumpCommand creates the dump command
func NewDumpCommand(a *app) *cobra.Command {
	var (
		classNames []string
		meta       bool
	)

	cmd := &cobra.Command{
		Use:   "dump <macho>",
		Short: "Dump the class descriptors of a Mach-O image",
		Long: `Load every Objective-C class of a Mach-O image and print its descriptor.
Use --class to restrict the output to some classes and --meta to print the
metaclass (class methods) as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := machort.Open(args[0])
			if err != nil {
				return err
			}
			cache := classinfo.New(rt, a.cfg.CacheOptions(a.log)...)

			var infos []*objc.ClassInfo
			if len(classNames) > 0 {
				for _, name := range classNames {
					info := cache.ClassInfoWithName(name)
					if info == nil {
						return fmt.Errorf("class %s not found in %s", name, args[0])
					}
					infos = append(infos, info)
				}
			} else {
				for _, cls := range rt.Classes() {
					if info := cache.ClassInfo(cls); info != nil {
						infos = append(infos, info)
					}
				}
			}

			w := cmd.OutOrStdout()
			for _, info := range infos {
				printClassInfo(w, info, a.cfg.Output.Verbose)
				if meta {
					if mi := cache.MetaClassInfo(info.Cls); mi != nil && len(mi.MethodInfos) > 0 {
						printClassInfo(w, mi, a.cfg.Output.Verbose)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&classNames, "class", "c", nil, "only dump these classes")
	cmd.Flags().BoolVarP(&meta, "meta", "m", false, "also dump metaclasses")
	return cmd
}

func printClassInfo(w io.Writer, info *objc.ClassInfo, verbose bool) {
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "// %s\n", info.Chain())
	if verbose {
		fmt.Fprintln(w, info.Verbose())
	} else {
		fmt.Fprintln(w, info.String())
	}
}
