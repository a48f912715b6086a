// ufsread extracts the contents of a seventh-edition unix filesystem from
// a Callan disk image into a directory tree on the host.
//
//	ufsread           extract the root filesystem from ./callan.img
//	ufsread b         extract the usr filesystem
//	ufsread info b    show the usr superblock without extracting
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/v7fs/go-v7fs/backend"
	backendfile "github.com/v7fs/go-v7fs/backend/file"
	"github.com/v7fs/go-v7fs/extract"
	v7 "github.com/v7fs/go-v7fs/filesystem/v7"
	"github.com/v7fs/go-v7fs/partition/callan"
	"github.com/v7fs/go-v7fs/util"
)

var (
	flagImage   string
	flagOut     string
	flagList    bool
	flagDump    bool
	flagVerbose bool
)

var log = logrus.New()

// lineFormatter emits bare message lines; the diagnostic prefixes in the
// messages themselves are the machine-readable part of the output.
type lineFormatter struct{}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

var rootCmd = &cobra.Command{
	Use:   "ufsread [partition]",
	Short: "extract a filesystem from a Callan disk image",
	Long: `ufsread reconstructs the directory tree of a seventh-edition unix
filesystem held in a raw disk image and copies every file and directory
into the current host filesystem. A partition argument starting with 'b'
selects the usr filesystem; anything else selects root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,

	SilenceUsage:  true,
	SilenceErrors: true,
}

var infoCmd = &cobra.Command{
	Use:   "info [partition]",
	Short: "show the superblock of a partition",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

func openFilesystem(args []string) (backend.File, *v7.FileSystem, error) {
	f, err := backendfile.Open(flagImage)
	if err != nil {
		return nil, nil, err
	}
	part := callan.Table{}.Select(partitionArg(args))
	fs, err := v7.Read(f, part)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, fs, nil
}

func partitionArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func runExtract(cmd *cobra.Command, args []string) error {
	f, fs, err := openFilesystem(args)
	if err != nil {
		return err
	}
	defer f.Close()

	sb := fs.Superblock()
	log.Infof("%s %s", fs.Partition().Name, sb.String())

	ex := extract.New(fs, log, extract.Options{ListOnly: flagList})
	return ex.Run(flagOut)
}

func runInfo(cmd *cobra.Command, args []string) error {
	f, fs, err := openFilesystem(args)
	if err != nil {
		return err
	}
	defer f.Close()

	sb := fs.Superblock()
	log.Infof("%s %s", fs.Partition().Name, sb.String())
	if flagDump {
		raw, err := fs.ReadBlock(1)
		if err != nil {
			return err
		}
		log.Info(util.DumpByteSlice(raw))
	}
	return nil
}

func main() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(new(lineFormatter))

	rootCmd.PersistentFlags().StringVarP(&flagImage, "image", "i", "callan.img", "disk image to read")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "report tombstones and other noise")
	rootCmd.Flags().StringVarP(&flagOut, "out", "o", ".", "directory the extracted tree is created under")
	rootCmd.Flags().BoolVarP(&flagList, "list", "l", false, "walk and report without writing anything")
	infoCmd.Flags().BoolVar(&flagDump, "dump", false, "hex dump the raw superblock")
	rootCmd.AddCommand(infoCmd)

	cobra.OnInitialize(func() {
		if flagVerbose {
			log.Level = logrus.DebugLevel
		}
	})

	if err := rootCmd.Execute(); err != nil {
		log.Errorf("Error: %v", err)
		os.Exit(1)
	}
}
