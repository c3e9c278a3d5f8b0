package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ovlad32/gbdata/dset"
	"github.com/ovlad32/gbdata/loader"
	"github.com/ovlad32/gbdata/meta"
	"github.com/ovlad32/gbdata/sources"
)

var logger = log.New()

func newConf() meta.LoadConfig {
	return meta.DefaultLoadConfig()
}

func InspectCommand() *cobra.Command {
	var conf = newConf()
	var cmd = &cobra.Command{
		Use:   "inspect dataFile",
		Short: "Loads a dataset (binary cache preferred) and prints its layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loader.NewLoader(conf)
			ds, err := l.LoadFromFile(args[0], 0, 1)
			if err != nil {
				return err
			}
			fmt.Printf("rows:            %v\n", ds.NumData)
			fmt.Printf("classes:         %v\n", ds.NumClass)
			fmt.Printf("columns:         %v\n", ds.NumTotalFeatures)
			fmt.Printf("used features:   %v\n", ds.NumFeatures())
			fmt.Printf("query groups:    %v\n", ds.Metadata.NumQueries())
			fmt.Printf("from binary:     %v\n", ds.LoadedFromBinFile)
			for i, name := range ds.FeatureNames {
				slot := ds.UsedFeatureMap[i]
				if slot < 0 {
					fmt.Printf("  %-24v dropped\n", name)
					continue
				}
				fmt.Printf("  %-24v feature #%v, %v bins\n",
					name, slot, ds.Features[slot].BinMapper().NumBin())
			}
			return nil
		},
	}
	addConfFlags(cmd, &conf)
	return cmd
}

func ConvertCommand() *cobra.Command {
	var conf = newConf()
	var cmd = &cobra.Command{
		Use:   "convert dataFile",
		Short: "Builds the dataset from text data and writes the binary cache next to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf.SaveBinary = true
			l := loader.NewLoader(conf)
			ds, err := l.LoadFromFile(args[0], 0, 1)
			if err != nil {
				return err
			}
			if ds.LoadedFromBinFile {
				return fmt.Errorf("%v.bin already exists, remove it first", args[0])
			}
			fmt.Printf("wrote %v.bin: %v rows, %v features\n", args[0], ds.NumData, ds.NumFeatures())
			return nil
		},
	}
	addConfFlags(cmd, &conf)
	return cmd
}

func addConfFlags(cmd *cobra.Command, conf *meta.LoadConfig) {
	cmd.Flags().BoolVar(&conf.HasHeader, "has-header", false, "first line of the data file is a header")
	cmd.Flags().StringVar(&conf.LabelColumn, "label-column", "", "label column, index or name:<header>")
	cmd.Flags().StringVar(&conf.WeightColumn, "weight-column", "", "weight column, index or name:<header>")
	cmd.Flags().StringVar(&conf.GroupColumn, "group-column", "", "group column, index or name:<header>")
	cmd.Flags().StringVar(&conf.IgnoreColumn, "ignore-column", "", "comma-separated columns to ignore")
	cmd.Flags().IntVar(&conf.MaxBin, "max-bin", conf.MaxBin, "max histogram bins per feature")
	cmd.Flags().IntVar(&conf.BinConstructSampleCnt, "sample-cnt", conf.BinConstructSampleCnt, "rows sampled for bin construction")
	cmd.Flags().Int64Var(&conf.DataRandomSeed, "seed", conf.DataRandomSeed, "data random seed")
}

func main() {
	logger.Out = os.Stderr
	dset.SetLogger(logger)
	loader.SetLogger(logger)
	meta.SetLogger(logger)
	sources.SetLogger(logger)

	Main := &cobra.Command{Use: "binspect"}
	Main.AddCommand(InspectCommand())
	Main.AddCommand(ConvertCommand())
	if err := Main.Execute(); err != nil {
		logger.Fatal(err)
	}
}
