// Command rainbow is the generate/attack CLI over the core engine
// library. It never talks to the optional HTTP job service — both
// subcommands run entirely in-process.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rawblock/rainbow-engine/internal/attack"
	"github.com/rawblock/rainbow-engine/internal/hashes"
	"github.com/rawblock/rainbow-engine/internal/pipeline"
	"github.com/rawblock/rainbow-engine/internal/store"
	"github.com/rawblock/rainbow-engine/internal/tableparams"
	"github.com/spf13/cobra"
)

// cliError carries the process exit code a failure should produce,
// distinct per subcommand per the external interface's contract.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }

func exitCoded(code int, err error) error { return &cliError{code: code, err: err} }

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		os.Exit(0)
	}
	if ce, ok := err.(*cliError); ok {
		if ce.code == 3 {
			fmt.Println("not found")
		} else {
			fmt.Fprintln(os.Stderr, "error:", ce.err)
		}
		os.Exit(ce.code)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rainbow",
		Short:         "Rainbow table generation and attack engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd(), newAttackCmd())
	return root
}

var hashNames = map[string]hashes.Kind{
	"MD4": hashes.MD4, "MD5": hashes.MD5, "NTLM": hashes.NTLM,
	"SHA1": hashes.SHA1, "SHA2_256": hashes.SHA2_256, "SHA3_256": hashes.SHA3_256,
}

func parseHashFlag(name string) (hashes.Kind, error) {
	k, ok := hashNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown hash kind %q", name)
	}
	return k, nil
}

func newGenerateCmd() *cobra.Command {
	var (
		hashName    string
		alphabet    string
		maxLen      uint8
		chainLen    uint64
		m0          uint64
		filtration  int
		outputDir   string
		tableCount  int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one or more rainbow tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			hashKind, err := parseHashFlag(hashName)
			if err != nil {
				return exitCoded(2, err)
			}
			if tableCount <= 0 {
				tableCount = 1
			}

			configs := make([]pipeline.Config, tableCount)
			for i := 0; i < tableCount; i++ {
				p, err := tableparams.New(hashKind, []byte(alphabet), maxLen, m0, chainLen, uint32(i))
				if err != nil {
					return exitCoded(2, err)
				}
				cols := []uint64{} // empty, not nil: nil selects the pipeline's default columns
				if filtration > 0 {
					cols = pipeline.DefaultFiltrationColumns(chainLen, filtration)
				}
				configs[i] = pipeline.Config{Params: p, FiltrationColumns: cols}
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return exitCoded(1, err)
			}

			tables, err := pipeline.GenerateTables(context.Background(), configs, concurrency)
			if err != nil {
				return exitCoded(1, err)
			}

			for _, tbl := range tables {
				path := filepath.Join(outputDir, fmt.Sprintf("table-%04d.rtc", tbl.Params.TableID))
				if err := store.Write(path, tbl.Params, tbl.Chains); err != nil {
					return exitCoded(1, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d chains)\n", path, len(tbl.Chains))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&hashName, "hash", "MD5", "hash kind (MD4, MD5, NTLM, SHA1, SHA2_256, SHA3_256)")
	cmd.Flags().StringVar(&alphabet, "charset", "", "alphabet bytes, e.g. 0123456789")
	cmd.Flags().Uint8Var(&maxLen, "max-len", 8, "maximum plaintext length")
	cmd.Flags().Uint64Var(&chainLen, "chain-len", 10000, "chain length t")
	cmd.Flags().Uint64Var(&m0, "startpoints", 1000000, "startpoint count m_0")
	cmd.Flags().IntVar(&filtration, "filtration-count", 0, "number of filtration columns, 0 to disable")
	cmd.Flags().StringVar(&outputDir, "output", ".", "output directory for table files")
	cmd.Flags().IntVar(&tableCount, "tables", 1, "number of independent tables to generate")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "tables to generate in parallel, 0 for sequential")
	cmd.MarkFlagRequired("charset")

	return cmd
}

func newAttackCmd() *cobra.Command {
	var (
		hashName  string
		digestHex string
		tablesDir string
	)

	cmd := &cobra.Command{
		Use:   "attack",
		Short: "Recover the plaintext behind a digest using generated tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			hashKind, err := parseHashFlag(hashName)
			if err != nil {
				return exitCoded(1, err)
			}
			digest, err := hex.DecodeString(digestHex)
			if err != nil {
				return exitCoded(1, fmt.Errorf("invalid digest hex: %w", err))
			}

			paths, err := filepath.Glob(filepath.Join(tablesDir, "*.rtc"))
			if err != nil {
				return exitCoded(1, err)
			}
			if len(paths) == 0 {
				return exitCoded(1, fmt.Errorf("no table files found in %s", tablesDir))
			}

			tables := make([]*attack.Table, 0, len(paths))
			defer func() {
				for _, t := range tables {
					t.Close()
				}
			}()
			for _, p := range paths {
				t, err := attack.Open(p)
				if err != nil {
					return exitCoded(1, err)
				}
				tables = append(tables, t)
			}

			res, err := attack.Run(context.Background(), attack.Config{Hash: hashKind, Digest: digest, Tables: tables})
			if err != nil {
				return exitCoded(1, err)
			}
			if !res.Found {
				return exitCoded(3, fmt.Errorf("not found"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(res.Plaintext))
			return nil
		},
	}

	cmd.Flags().StringVar(&hashName, "hash", "MD5", "hash kind matching the tables")
	cmd.Flags().StringVar(&digestHex, "digest", "", "target digest, hex-encoded")
	cmd.Flags().StringVar(&tablesDir, "tables", ".", "directory of .rtc table files")
	cmd.MarkFlagRequired("digest")

	return cmd
}
