package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/appsworld/go-classinfo/types/objc"
)

// NewEncodingCommand creates the encoding command
func NewEncodingCommand() *cobra.Command {
	var method bool

	cmd := &cobra.Command{
		Use:   "encoding <type>...",
		Short: "Classify type encodings",
		Long: `Print the category and qualifier flags of each type encoding. With --method
the arguments are method type encodings (e.g. "v24@0:8@16") and each return
and argument type is classified separately.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			name := color.New(color.FgYellow)
			for _, enc := range args {
				if !method {
					fmt.Fprintf(w, "%s\t%s\n", name.Sprint(enc), objc.GetEncodingType(enc))
					continue
				}
				ret, argTypes := objc.SplitMethodTypes(enc)
				fmt.Fprintf(w, "%s\n", name.Sprint(enc))
				fmt.Fprintf(w, "  return\t%s\t%s\n", ret, objc.GetEncodingType(ret))
				for i, arg := range argTypes {
					fmt.Fprintf(w, "  arg%d\t%s\t%s\n", i, arg, objc.GetEncodingType(arg))
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&method, "method", false, "treat arguments as method type encodings")
	return cmd
}

// NewPropertyCommand creates the property command
func NewPropertyCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "property <attributes>...",
		Short: "Parse property attribute strings",
		Long:  `Parse composite property attribute strings such as 'T@"User",&,N,V_user'.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, attrs := range args {
				p := objc.ParseProperty(name, attrs)
				fmt.Fprintf(w, "%s\n", color.New(color.FgYellow).Sprint(attrs))
				fmt.Fprintf(w, "  type\t%s\n", p.Type)
				fmt.Fprintf(w, "  encoding\t%s\n", p.TypeEncoding)
				if p.ClassName != "" {
					fmt.Fprintf(w, "  class\t%s\n", p.ClassName)
				}
				if len(p.Protocols) > 0 {
					fmt.Fprintf(w, "  protocols\t%s\n", strings.Join(p.Protocols, ", "))
				}
				if p.IvarName != "" {
					fmt.Fprintf(w, "  ivar\t%s\n", p.IvarName)
				}
				if p.Getter != "" {
					fmt.Fprintf(w, "  getter\t%s\n", p.Getter)
				}
				if p.Setter != "" {
					fmt.Fprintf(w, "  setter\t%s\n", p.Setter)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "property name, used to derive default accessors")
	return cmd
}
