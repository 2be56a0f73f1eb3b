/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/castmesh/vtkcombine/logging"
	"github.com/castmesh/vtkcombine/pipeline"
	"github.com/castmesh/vtkcombine/vtk"
)

// RunParameters is the optional YAML parameters file for a conversion run.
type RunParameters struct {
	Title      string `yaml:"Title"`
	Format     string `yaml:"Format"`     // ascii or binary
	Compressor string `yaml:"Compressor"` // none, zlib, lz4, zstd
	Jobs       int    `yaml:"Jobs"`
}

func (rp *RunParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, rp)
}

func (rp *RunParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("[%s]\t\t\t= Format\n", rp.Format)
	fmt.Printf("[%s]\t\t\t= Compressor\n", rp.Compressor)
	fmt.Printf("[%d]\t\t\t\t= Jobs\n", rp.Jobs)
}

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <VTK directory>",
	Short: "Convert a VTK time-series tree into combined VTP files",
	Long: `Convert scans a directory of legacy VTK files (gravityCasting_<t>.vtk
primary files plus inlet/, model/ and riser/ component subdirectories) and
writes one combined_timestep_<t>.vtp per timestep into vtp_output/ under
the source directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]
		if _, err := os.Stat(root); err != nil {
			return fmt.Errorf("directory %q does not exist", root)
		}

		rp := &RunParameters{
			Format:     viper.GetString("format"),
			Compressor: viper.GetString("compressor"),
			Jobs:       viper.GetInt("jobs"),
		}
		if paramsFile, _ := cmd.Flags().GetString("params"); paramsFile != "" {
			data, err := os.ReadFile(paramsFile)
			if err != nil {
				return err
			}
			if err = rp.Parse(data); err != nil {
				return fmt.Errorf("parsing %s: %w", paramsFile, err)
			}
			rp.Print()
		}
		opts := vtk.XMLOptions{
			Format:     vtk.DataFormat(rp.Format),
			Compressor: vtk.CompressorKind(rp.Compressor),
		}
		if err := opts.Validate(); err != nil {
			return err
		}

		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}

		log, err := logging.New(viper.GetBool("verbose"))
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer log.Sync()

		d := &pipeline.Driver{
			Toolkit: pipeline.NewToolkit(log),
			Root:    root,
			Options: opts,
			Jobs:    rp.Jobs,
			Log:     log,
		}
		sum, err := d.Run()
		if err != nil {
			return err
		}
		fmt.Printf("Successfully created %d of %d combined VTP files in %s\n",
			sum.Written, sum.Timesteps, sum.OutputDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("format", "f", "ascii", "output data format: ascii or binary")
	convertCmd.Flags().StringP("compressor", "c", "none", "binary data compressor: none, zlib, lz4 or zstd")
	convertCmd.Flags().IntP("jobs", "j", 1, "timesteps to convert concurrently")
	convertCmd.Flags().StringP("params", "p", "", "YAML run parameters file")
	convertCmd.Flags().Bool("profile", false, "write a CPU profile for the run")
	viper.BindPFlag("format", convertCmd.Flags().Lookup("format"))
	viper.BindPFlag("compressor", convertCmd.Flags().Lookup("compressor"))
	viper.BindPFlag("jobs", convertCmd.Flags().Lookup("jobs"))
}
