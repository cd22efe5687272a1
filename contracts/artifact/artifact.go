package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/umbracle/go-web3/abi"

	"github.com/punchingpaco/pacodeploy/contracts/abis"
	"github.com/punchingpaco/pacodeploy/helper/hex"
)

const (
	// HardhatFormat is the _format value of hardhat compilation artifacts
	HardhatFormat = "hh-sol-artifact-1"

	debugSuffix  = ".dbg.json"
	buildInfoDir = "build-info"
)

var (
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrAmbiguousArtifact = errors.New("multiple artifacts match, use a fully qualified name")
	ErrAbstractContract  = errors.New("artifact has no creation bytecode")
	ErrUnlinkedLibraries = errors.New("artifact bytecode references unlinked libraries")
	ErrInvalidArtifact   = errors.New("invalid artifact")
)

// LinkReferences maps source name -> library name -> placeholder offsets
type LinkReferences map[string]map[string][]struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Artifact is a compiled contract ready to be deployed
type Artifact struct {
	Format           string
	ContractName     string
	SourceName       string
	Path             string
	RawABI           json.RawMessage
	ABI              *abi.ABI
	Bytecode         []byte
	DeployedBytecode []byte
	LinkReferences   LinkReferences
}

// FullyQualifiedName returns "<sourceName>:<contractName>", as hardhat does
func (a *Artifact) FullyQualifiedName() string {
	if a.SourceName == "" {
		return a.ContractName
	}

	return a.SourceName + ":" + a.ContractName
}

// jsonArtifact covers the hardhat layout and the foundry one, where
// bytecode is an object carrying the hex string in "object"
type jsonArtifact struct {
	Format           string          `json:"_format"`
	ContractName     string          `json:"contractName"`
	SourceName       string          `json:"sourceName"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         json.RawMessage `json:"bytecode"`
	DeployedBytecode json.RawMessage `json:"deployedBytecode"`
	LinkReferences   LinkReferences  `json:"linkReferences"`
}

type bytecodeObject struct {
	Object         string         `json:"object"`
	LinkReferences LinkReferences `json:"linkReferences"`
}

func decodeBytecode(raw json.RawMessage) (string, LinkReferences, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil, nil
	}

	var code string
	if err := json.Unmarshal(raw, &code); err == nil {
		return code, nil, nil
	}

	var obj bytecodeObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", nil, err
	}

	return obj.Object, obj.LinkReferences, nil
}

func hasLinks(refs LinkReferences) bool {
	for _, libs := range refs {
		if len(libs) > 0 {
			return true
		}
	}

	return false
}

// ReadFile parses a single artifact file
func ReadFile(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(path, data)
}

// Parse decodes artifact json. Path is only used to name the contract
// when the artifact does not carry a contractName.
func Parse(path string, data []byte) (*Artifact, error) {
	var raw jsonArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidArtifact, path, err)
	}

	if raw.ContractName == "" {
		raw.ContractName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	code, links, err := decodeBytecode(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("%w %s: bytecode: %v", ErrInvalidArtifact, path, err)
	}

	if links != nil {
		raw.LinkReferences = links
	}

	if hasLinks(raw.LinkReferences) {
		return nil, fmt.Errorf("%w: %s", ErrUnlinkedLibraries, raw.ContractName)
	}

	bytecode, err := hex.DecodeHex(code)
	if err != nil {
		return nil, fmt.Errorf("%w %s: bytecode: %v", ErrInvalidArtifact, path, err)
	}

	if len(bytecode) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAbstractContract, raw.ContractName)
	}

	deployedCode, _, err := decodeBytecode(raw.DeployedBytecode)
	if err != nil {
		return nil, fmt.Errorf("%w %s: deployed bytecode: %v", ErrInvalidArtifact, path, err)
	}

	deployed, err := hex.DecodeHex(deployedCode)
	if err != nil {
		return nil, fmt.Errorf("%w %s: deployed bytecode: %v", ErrInvalidArtifact, path, err)
	}

	contractABI, err := abis.NewABI(raw.ABI)
	if err != nil {
		return nil, fmt.Errorf("%w %s: abi: %v", ErrInvalidArtifact, path, err)
	}

	return &Artifact{
		Format:           raw.Format,
		ContractName:     raw.ContractName,
		SourceName:       raw.SourceName,
		Path:             path,
		RawABI:           raw.ABI,
		ABI:              contractABI,
		Bytecode:         bytecode,
		DeployedBytecode: deployed,
		LinkReferences:   raw.LinkReferences,
	}, nil
}
