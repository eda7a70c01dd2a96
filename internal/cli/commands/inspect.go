package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/extmodel/internal/cli/ui"
	"github.com/conduit-lang/extmodel/metadata"
	"github.com/conduit-lang/extmodel/model"
)

func newInspectCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize an extension model document",
		Long: `Read an extension model document and print its attributes, components,
errors and catalog types as tables. Use "-" to read from stdin.`,
		Example: `  extmodel inspect fleet.json
  cat fleet.json | extmodel inspect -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			ext, err := a.serializer.Deserialize(data)
			if err != nil {
				return err
			}
			renderExtension(cmd.OutOrStdout(), ext, a.noColor)
			return nil
		},
	}
}

func renderExtension(w io.Writer, ext *model.ExtensionModel, noColor bool) {
	ui.Header(w, "Extension", noColor)
	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("Name", ext.Name)
	kv.AddRow("Description", ext.Description)
	kv.AddRow("Version", ext.Version)
	kv.AddRow("Vendor", ext.Vendor)
	kv.AddRow("Category", string(ext.Category))
	kv.AddRow("Min Mule version", ext.MinMuleVersion)
	kv.AddRow("Prefix", ext.XmlDsl.Prefix)
	kv.AddRow("Namespace", ext.XmlDsl.Namespace)
	kv.Render()
	fmt.Fprintln(w)

	components := ui.NewTable(w, noColor, "KIND", "NAME", "CONFIGURATION", "PARAMETERS")
	addComponent := func(kind model.ComponentKind, config string, p *model.ParameterizedModel) {
		components.AddRow(kind.String(), p.Name, config, strconv.Itoa(len(p.AllParameters())))
	}
	for _, c := range ext.Configurations {
		for _, op := range c.Operations {
			addComponent(op.Kind(), c.Name, &op.ParameterizedModel)
		}
		for _, src := range c.Sources {
			addComponent(src.Kind(), c.Name, &src.ParameterizedModel)
		}
	}
	for _, op := range ext.Operations {
		addComponent(op.Kind(), "", &op.ParameterizedModel)
	}
	for _, src := range ext.Sources {
		addComponent(src.Kind(), "", &src.ParameterizedModel)
	}
	for _, fn := range ext.Functions {
		addComponent(fn.Kind(), "", &fn.ParameterizedModel)
	}
	for _, c := range ext.Constructs {
		addComponent(c.Kind(), "", &c.ParameterizedModel)
	}
	renderSection(w, "Components", components, noColor)

	errs := ui.NewTable(w, noColor, "ERROR", "PARENT", "HANDLEABLE")
	for _, e := range ext.Errors {
		parent := ""
		if e.Parent != nil {
			parent = e.Parent.Identifier()
		}
		errs.AddRow(e.Identifier(), parent, strconv.FormatBool(e.Handleable))
	}
	renderSection(w, "Errors", errs, noColor)

	types := ui.NewTable(w, noColor, "ID", "KIND", "FIELDS")
	for _, t := range ext.Types {
		types.AddRow(t.ID, t.Kind.String(), fieldNames(t))
	}
	for _, it := range ext.ImportedTypes {
		types.AddRow(it.Type.ID+" (imported)", it.Type.Kind.String(), fieldNames(it.Type))
	}
	renderSection(w, "Types", types, noColor)
}

func renderSection(w io.Writer, title string, table *ui.Table, noColor bool) {
	if table.Len() == 0 {
		return
	}
	ui.Header(w, fmt.Sprintf("%s (%d)", title, table.Len()), noColor)
	table.Render()
	fmt.Fprintln(w)
}

func fieldNames(t *metadata.Type) string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	return strings.Join(names, ", ")
}
