package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/gogpu/naga"
	"github.com/spf13/cobra"

	"github.com/marben/deepzoom/gpu"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// compileKernel translates the perturbation kernel to SPIR-V.
func compileKernel() ([]byte, error) {
	spirv, err := naga.Compile(gpu.KernelSource)
	if err != nil {
		return nil, fmt.Errorf("compile kernel: %w", err)
	}
	if len(spirv) < 4 || binary.LittleEndian.Uint32(spirv) != spirvMagic {
		return nil, fmt.Errorf("compile kernel: output is not spir-v")
	}
	return spirv, nil
}

func newShaderCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "shader",
		Short: "validate the gpu kernel and dump it as spir-v",
		RunE: func(cmd *cobra.Command, _ []string) error {
			spirv, err := compileKernel()
			if err != nil {
				return err
			}
			if out != "" {
				if err := os.WriteFile(out, spirv, 0o644); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "kernel ok: %d spir-v words\n", len(spirv)/4)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the spir-v module here")
	return cmd
}
