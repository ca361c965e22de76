package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stsoe/aiebu/internal/assemble"
	"github.com/stsoe/aiebu/internal/asmfirstpass"
	"github.com/stsoe/aiebu/internal/config"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble one instruction (or assembly) input into a container",
	RunE:  assembleExecution,
}

func init() {
	flags := assembleCmd.Flags()
	flags.String("type", "", "buffer-type discriminant (blob_instr_dpu|blob_instr_prepost|blob_instr_transaction|blob_control_packet|asm_aie2|asm_aie2ps)")
	flags.String("instr", "", "path to the instruction (or control-packet, for blob_control_packet) buffer")
	flags.String("ctrlpkt", "", "path to an optional separate control-packet buffer")
	flags.String("metadata", "", "path to the external-buffer metadata document")
	flags.String("dialect", "auto", "metadata dialect (auto|compiler-a|compiler-b|patchlist)")
	flags.String("items", "", "path to a JSON-encoded token list, required for asm_aie2/asm_aie2ps")
	flags.StringP("output", "o", "", "output object path (defaults to aiebu.toml's output_path)")
}

func assembleExecution(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	typeStr, _ := flags.GetString("type")
	instrPath, _ := flags.GetString("instr")
	ctrlpktPath, _ := flags.GetString("ctrlpkt")
	metadataPath, _ := flags.GetString("metadata")
	dialectStr, _ := flags.GetString("dialect")
	itemsPath, _ := flags.GetString("items")
	outputPath, _ := flags.GetString("output")
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading %s: %w", configPath, err)
		}
	}
	if typeStr == "" {
		typeStr = cfg.DefaultType
	}
	if typeStr == "" {
		return fmt.Errorf("--type is required (no default_buffer_type set in aiebu.toml)")
	}

	bufType, err := assemble.ParseBufferType(typeStr)
	if err != nil {
		return err
	}

	req := assemble.Request{Type: bufType, Dialect: assemble.Dialect(dialectStr)}

	switch bufType {
	case assemble.AsmAIE2, assemble.AsmAIE2PS:
		if itemsPath == "" {
			return fmt.Errorf("--items is required for %s", typeStr)
		}
		raw, err := os.ReadFile(itemsPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", itemsPath, err)
		}
		var items []asmfirstpass.Item
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("parsing %s: %w", itemsPath, err)
		}
		req.Items = items

	default:
		if instrPath == "" {
			return fmt.Errorf("--instr is required for %s", typeStr)
		}
		bufs, err := readFilesConcurrently(cmd.Context(), instrPath, ctrlpktPath, metadataPath)
		if err != nil {
			return err
		}
		req.InstrBuf, req.ControlPacketBuf, req.MetadataDoc = bufs[0], bufs[1], bufs[2]
	}

	res, err := assemble.Assemble(cmd.Context(), req, cfg)
	if err != nil {
		return err
	}

	if res.Bytes == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "first pass resolved %d job(s), %d label(s)\n", len(res.FirstPass.Jobs), len(res.FirstPass.Labels))
		return nil
	}

	out := outputPath
	if out == "" {
		out = cfg.OutputPath
	}
	if err := os.WriteFile(out, res.Bytes, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %d relocations)\n", out, len(res.Bytes), res.Table.Len())
	return nil
}
