package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/eth2030/go-kzg-das/eip4844"
	"github.com/eth2030/go-kzg-das/fk20"
	"github.com/eth2030/go-kzg-das/kzg"
	applog "github.com/eth2030/go-kzg-das/log"
	"github.com/eth2030/go-kzg-das/setup"
)

var cliLog = applog.Default().Component("cli")

// setupFlags are the flags common to every subcommand for selecting a KZG
// trusted setup.
type setupFlags struct {
	setupPath string
	insecureN uint64
}

func bindSetupFlags(fs *flagSet) *setupFlags {
	sf := &setupFlags{}
	fs.StringVar(&sf.setupPath, "setup", "", "path to a trusted-setup text file")
	fs.Uint64Var(&sf.insecureN, "insecure", 0, "derive a toy n-point SRS instead of loading a real setup (development only)")
	return sf
}

func (sf *setupFlags) load() (*kzg.Settings, error) {
	switch {
	case sf.setupPath != "":
		f, err := os.Open(sf.setupPath)
		if err != nil {
			return nil, fmt.Errorf("open setup file: %w", err)
		}
		defer f.Close()
		return setup.Load(f)
	case sf.insecureN != 0:
		cliLog.Warn("using insecure development trusted setup", "n", sf.insecureN)
		return setup.Insecure(sf.insecureN)
	default:
		return nil, fmt.Errorf("one of -setup or -insecure is required")
	}
}

func readBlobFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blob file: %w", err)
	}
	return b, nil
}

func decodeHexArg(name, s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("-%s: invalid hex: %w", name, err)
	}
	return b, nil
}

func fail(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, "kzgdas: "+format+"\n", args...)
	return 1
}

// ---------------------------------------------------------------------------
// commit
// ---------------------------------------------------------------------------

func runCommit(args []string) int {
	fs := newCustomFlagSet("commit")
	sf := bindSetupFlags(fs)
	blobPath := fs.String("blob", "", "path to a blob file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *blobPath == "" {
		return fail("commit: -blob is required")
	}

	ks, err := sf.load()
	if err != nil {
		return fail("loading trusted setup: %v", err)
	}
	blob, err := readBlobFile(*blobPath)
	if err != nil {
		return fail("%v", err)
	}

	commitment, err := eip4844.BlobToKZGCommitment(ks, blob)
	if err != nil {
		return fail("commit: %v", err)
	}
	fmt.Println(hex.EncodeToString(commitment))
	return 0
}

// ---------------------------------------------------------------------------
// prove-point / verify-point
// ---------------------------------------------------------------------------

func runProvePoint(args []string) int {
	fs := newCustomFlagSet("prove-point")
	sf := bindSetupFlags(fs)
	blobPath := fs.String("blob", "", "path to a blob file")
	zHex := fs.String("z", "", "evaluation point, as a 32-byte hex field element")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *blobPath == "" || *zHex == "" {
		return fail("prove-point: -blob and -z are required")
	}

	ks, err := sf.load()
	if err != nil {
		return fail("loading trusted setup: %v", err)
	}
	blob, err := readBlobFile(*blobPath)
	if err != nil {
		return fail("%v", err)
	}
	z, err := decodeHexArg("z", *zHex)
	if err != nil {
		return fail("%v", err)
	}

	proof, y, err := eip4844.ComputeKZGProof(ks, blob, z)
	if err != nil {
		return fail("prove-point: %v", err)
	}
	fmt.Printf("proof %s\n", hex.EncodeToString(proof[:]))
	fmt.Printf("y     %s\n", hex.EncodeToString(y[:]))
	return 0
}

func runVerifyPoint(args []string) int {
	fs := newCustomFlagSet("verify-point")
	sf := bindSetupFlags(fs)
	commitmentHex := fs.String("commitment", "", "hex KZG commitment")
	zHex := fs.String("z", "", "hex evaluation point")
	yHex := fs.String("y", "", "hex claimed value")
	proofHex := fs.String("proof", "", "hex KZG proof")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *commitmentHex == "" || *zHex == "" || *yHex == "" || *proofHex == "" {
		return fail("verify-point: -commitment, -z, -y and -proof are required")
	}

	ks, err := sf.load()
	if err != nil {
		return fail("loading trusted setup: %v", err)
	}
	commitment, err := decodeHexArg("commitment", *commitmentHex)
	if err != nil {
		return fail("%v", err)
	}
	z, err := decodeHexArg("z", *zHex)
	if err != nil {
		return fail("%v", err)
	}
	y, err := decodeHexArg("y", *yHex)
	if err != nil {
		return fail("%v", err)
	}
	proof, err := decodeHexArg("proof", *proofHex)
	if err != nil {
		return fail("%v", err)
	}

	ok, err := eip4844.VerifyKZGProof(ks, commitment, z, y, proof)
	if err != nil {
		return fail("verify-point: %v", err)
	}
	return reportVerdict(ok)
}

// ---------------------------------------------------------------------------
// prove-blob / verify-blob
// ---------------------------------------------------------------------------

func runProveBlob(args []string) int {
	fs := newCustomFlagSet("prove-blob")
	sf := bindSetupFlags(fs)
	blobPath := fs.String("blob", "", "path to a blob file")
	commitmentHex := fs.String("commitment", "", "hex KZG commitment for the blob")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *blobPath == "" || *commitmentHex == "" {
		return fail("prove-blob: -blob and -commitment are required")
	}

	ks, err := sf.load()
	if err != nil {
		return fail("loading trusted setup: %v", err)
	}
	blob, err := readBlobFile(*blobPath)
	if err != nil {
		return fail("%v", err)
	}
	commitment, err := decodeHexArg("commitment", *commitmentHex)
	if err != nil {
		return fail("%v", err)
	}

	proof, err := eip4844.ComputeBlobKZGProof(ks, blob, commitment)
	if err != nil {
		return fail("prove-blob: %v", err)
	}
	fmt.Println(hex.EncodeToString(proof[:]))
	return 0
}

func runVerifyBlob(args []string) int {
	fs := newCustomFlagSet("verify-blob")
	sf := bindSetupFlags(fs)
	blobPath := fs.String("blob", "", "path to a blob file")
	commitmentHex := fs.String("commitment", "", "hex KZG commitment")
	proofHex := fs.String("proof", "", "hex blob proof")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *blobPath == "" || *commitmentHex == "" || *proofHex == "" {
		return fail("verify-blob: -blob, -commitment and -proof are required")
	}

	ks, err := sf.load()
	if err != nil {
		return fail("loading trusted setup: %v", err)
	}
	blob, err := readBlobFile(*blobPath)
	if err != nil {
		return fail("%v", err)
	}
	commitment, err := decodeHexArg("commitment", *commitmentHex)
	if err != nil {
		return fail("%v", err)
	}
	proof, err := decodeHexArg("proof", *proofHex)
	if err != nil {
		return fail("%v", err)
	}

	ok, err := eip4844.VerifyBlobKZGProof(ks, blob, commitment, proof)
	if err != nil {
		return fail("verify-blob: %v", err)
	}
	return reportVerdict(ok)
}

// ---------------------------------------------------------------------------
// compute-cells / verify-cells / recover-cells
// ---------------------------------------------------------------------------

func loadFK20(sf *setupFlags, cellSize uint64) (*kzg.Settings, *fk20.Settings, error) {
	ks, err := sf.load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading trusted setup: %w", err)
	}
	fkSettings, err := fk20.NewSettings(ks, cellSize)
	if err != nil {
		return nil, nil, fmt.Errorf("building FK20 setup: %w", err)
	}
	return ks, fkSettings, nil
}

func runComputeCells(args []string) int {
	fs := newCustomFlagSet("compute-cells")
	sf := bindSetupFlags(fs)
	blobPath := fs.String("blob", "", "path to a blob file")
	cellSize := fs.Uint64("cell-size", 64, "field elements per cell")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *blobPath == "" {
		return fail("compute-cells: -blob is required")
	}

	ks, fkSettings, err := loadFK20(sf, *cellSize)
	if err != nil {
		return fail("%v", err)
	}
	blob, err := readBlobFile(*blobPath)
	if err != nil {
		return fail("%v", err)
	}

	cells, proofs, err := eip4844.ComputeCellsAndKZGProofs(ks, fkSettings, blob)
	if err != nil {
		return fail("compute-cells: %v", err)
	}
	for i := range cells {
		fmt.Printf("cell %d  %s\n", i, hex.EncodeToString(cells[i]))
		fmt.Printf("proof %d %s\n", i, hex.EncodeToString(proofs[i]))
	}
	return 0
}

func parseUintList(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseHexList(s string) ([][]byte, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([][]byte, len(parts))
	for i, p := range parts {
		b, err := decodeHexArg("list", strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func runVerifyCells(args []string) int {
	fs := newCustomFlagSet("verify-cells")
	sf := bindSetupFlags(fs)
	cellSize := fs.Uint64("cell-size", 64, "field elements per cell")
	commitmentsArg := fs.String("commitments", "", "comma-separated hex commitments, one per cell")
	indicesArg := fs.String("indices", "", "comma-separated cell indices")
	cellsArg := fs.String("cells", "", "comma-separated hex cells")
	proofsArg := fs.String("proofs", "", "comma-separated hex cell proofs")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	_, fkSettings, err := loadFK20(sf, *cellSize)
	if err != nil {
		return fail("%v", err)
	}
	ks, err := sf.load()
	if err != nil {
		return fail("loading trusted setup: %v", err)
	}

	commitments, err := parseHexList(*commitmentsArg)
	if err != nil {
		return fail("-commitments: %v", err)
	}
	indices, err := parseUintList(*indicesArg)
	if err != nil {
		return fail("-indices: %v", err)
	}
	cells, err := parseHexList(*cellsArg)
	if err != nil {
		return fail("-cells: %v", err)
	}
	proofs, err := parseHexList(*proofsArg)
	if err != nil {
		return fail("-proofs: %v", err)
	}

	ok, err := eip4844.VerifyCellKZGProofBatch(ks, fkSettings, commitments, indices, cells, proofs)
	if err != nil {
		return fail("verify-cells: %v", err)
	}
	return reportVerdict(ok)
}

func runRecoverCells(args []string) int {
	fs := newCustomFlagSet("recover-cells")
	sf := bindSetupFlags(fs)
	cellSize := fs.Uint64("cell-size", 64, "field elements per cell")
	indicesArg := fs.String("indices", "", "comma-separated known cell indices")
	cellsArg := fs.String("cells", "", "comma-separated hex known cells")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ks, fkSettings, err := loadFK20(sf, *cellSize)
	if err != nil {
		return fail("%v", err)
	}

	indices, err := parseUintList(*indicesArg)
	if err != nil {
		return fail("-indices: %v", err)
	}
	cells, err := parseHexList(*cellsArg)
	if err != nil {
		return fail("-cells: %v", err)
	}

	recoveredCells, recoveredProofs, err := eip4844.RecoverCellsAndKZGProofs(ks, fkSettings, indices, cells)
	if err != nil {
		return fail("recover-cells: %v", err)
	}
	for i := range recoveredCells {
		fmt.Printf("cell %d  %s\n", i, hex.EncodeToString(recoveredCells[i]))
		fmt.Printf("proof %d %s\n", i, hex.EncodeToString(recoveredProofs[i]))
	}
	return 0
}

func reportVerdict(ok bool) int {
	if ok {
		fmt.Println("VALID")
		return 0
	}
	fmt.Println("INVALID")
	return 1
}
