package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hello-bedrock/promptimage/pkg/errors"
	"github.com/hello-bedrock/promptimage/pkg/event"
	"github.com/hello-bedrock/promptimage/pkg/pipeline"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <event.json|->",
	Short: "Replay an S3 notification document through the pipeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := readEventFile(args[0])
	if err != nil {
		return err
	}

	records, err := event.Parse(data)
	if err != nil {
		return err
	}

	p, closeFn, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	results, procErr := p.Process(ctx, records)
	printResults(cmd.OutOrStdout(), results)

	if procErr != nil {
		return errors.Wrap(procErr, "batch failed")
	}
	return nil
}

func readEventFile(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, errors.Wrap(err, "failed to read event from stdin")
	}
	data, err := os.ReadFile(path)
	return data, errors.Wrap(err, "failed to read event file")
}

func printResults(w io.Writer, results []pipeline.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No records processed")
		return
	}

	fmt.Fprintf(w, "%-40s %-40s %-10s %-20s\n", "SOURCE", "OUTPUT", "OUTCOME", "DETAIL")
	fmt.Fprintln(w, "--------------------------------------------------------------------------------------------------------------")

	for _, res := range results {
		output := res.OutputKey
		if output == "" {
			output = "-"
		}
		detail := res.Reason
		if res.Err != nil {
			detail = res.Err.Error()
		}
		if detail == "" {
			detail = "-"
		}
		fmt.Fprintf(w, "%-40s %-40s %-10s %-20s\n",
			"s3://"+res.Record.Bucket+"/"+res.Record.Key, output, res.Outcome, detail)
	}
}
