package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"tabular-hq/verdict/pkg/cli"
	"tabular-hq/verdict/pkg/dmn"
	dmnxml "tabular-hq/verdict/pkg/dmn/xml"
)

var convertFlags struct {
	file       string
	output     string
	to         string
	dmnVersion string
	tenant     string
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert decisions between DMN XML and JSON",
	Long: `Convert decision models between DMN XML and the JSON representation.

XML input is parsed into the decision model and emitted as JSON. JSON
input (a decision object or an array of them) is emitted as a DMN
document. The --dmn-version flag selects the namespace generation for
XML output.

Examples:
  # DMN XML to the JSON model
  verdict convert --file approval.dmn --to json

  # JSON model back to DMN 1.3 XML
  verdict convert --file approval.json --to xml --output approval.dmn

  # Emit DMN 1.1 namespaces
  verdict convert --file approval.json --to xml --dmn-version 1.1`,
	RunE: convertDecisions,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertFlags.file, "file", "f", "", "input file (DMN XML or JSON)")
	convertCmd.Flags().StringVarP(&convertFlags.output, "output", "o", "", "output file (defaults to stdout)")
	convertCmd.Flags().StringVar(&convertFlags.to, "to", "json", "target format: json, xml")
	convertCmd.Flags().StringVar(&convertFlags.dmnVersion, "dmn-version", string(dmnxml.DMN13), "DMN namespace version for XML output: 1.1, 1.2, 1.3")
	convertCmd.Flags().StringVar(&convertFlags.tenant, "tenant", "", "tenant id stamped on converted decisions")
	_ = convertCmd.MarkFlagRequired("file")
}

func convertDecisions(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(convertFlags.file)
	if err != nil {
		return cli.NewCommandError("convert", err)
	}

	var out []byte
	switch convertFlags.to {
	case "json":
		out, err = xmlToJSON(data)
	case "xml":
		out, err = jsonToXML(data)
	default:
		return cli.NewInputError("to", fmt.Sprintf("unsupported target format %q", convertFlags.to))
	}
	if err != nil {
		return err
	}

	if convertFlags.output == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(convertFlags.output, out, 0644); err != nil {
		return cli.NewCommandError("convert", err)
	}
	return nil
}

func xmlToJSON(data []byte) ([]byte, error) {
	decisions, parsed := dmnxml.ToCreateRequests(data, convertFlags.tenant)
	if len(parsed.Errors) > 0 {
		return nil, cli.NewCommandError("convert", fmt.Errorf("parse failed: %s", strings.Join(parsed.Errors, "; ")))
	}
	if len(decisions) == 0 {
		return nil, cli.NewCommandError("convert", fmt.Errorf("document contains no decision tables"))
	}
	return json.MarshalIndent(decisions, "", "  ")
}

func jsonToXML(data []byte) ([]byte, error) {
	version := dmnxml.Version(convertFlags.dmnVersion)
	if !version.Valid() {
		return nil, cli.NewInputError("dmn-version", fmt.Sprintf("unsupported DMN version %q", convertFlags.dmnVersion))
	}

	decisions, err := decodeDecisions(data)
	if err != nil {
		return nil, err
	}

	out, err := dmnxml.EmitAll(decisions, dmnxml.WithVersion(version))
	if err != nil {
		return nil, cli.NewCommandError("convert", err)
	}
	return out, nil
}

// decodeDecisions accepts either a JSON array of decisions or a single
// decision object.
func decodeDecisions(data []byte) ([]*dmn.Decision, error) {
	var decisions []*dmn.Decision
	if err := json.Unmarshal(data, &decisions); err == nil {
		if len(decisions) == 0 {
			return nil, cli.NewInputError("file", "input holds no decisions")
		}
		return decisions, nil
	}

	var single dmn.Decision
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, cli.NewInputError("file", "input is neither a decision object nor an array of them")
	}
	return []*dmn.Decision{&single}, nil
}
