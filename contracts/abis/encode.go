package abis

import (
	"errors"
	"fmt"

	"github.com/umbracle/go-web3/abi"
)

var (
	ErrNoABI           = errors.New("no abi")
	ErrMalformedABI    = errors.New("malformed abi")
	ErrConstructorArgs = errors.New("constructor argument count mismatch")
)

// NewABI parses a JSON abi definition.
// The abi parser panics on unknown argument types, that is reported as ErrMalformedABI.
func NewABI(raw []byte) (parsed *abi.ABI, err error) {
	if len(raw) == 0 {
		return nil, ErrNoABI
	}

	defer func() {
		if r := recover(); r != nil {
			parsed, err = nil, fmt.Errorf("%w: %v", ErrMalformedABI, r)
		}
	}()

	return abi.NewABI(string(raw))
}

// EncodeConstructor encodes positional constructor arguments.
// A contract without an explicit constructor takes no arguments.
func EncodeConstructor(contractABI *abi.ABI, args []interface{}) ([]byte, error) {
	if contractABI == nil {
		return nil, ErrNoABI
	}

	method := contractABI.Constructor
	if method == nil || method.Inputs == nil {
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: expected 0, got %d", ErrConstructorArgs, len(args))
		}

		return nil, nil
	}

	if expected := len(method.Inputs.TupleElems()); expected != len(args) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrConstructorArgs, expected, len(args))
	}

	// no input
	if len(args) == 0 {
		return nil, nil
	}

	return method.Inputs.Encode(args)
}

// DeployInput concatenates creation bytecode with the encoded constructor arguments
func DeployInput(bytecode []byte, contractABI *abi.ABI, args []interface{}) ([]byte, error) {
	encoded, err := EncodeConstructor(contractABI, args)
	if err != nil {
		return nil, err
	}

	input := make([]byte, 0, len(bytecode)+len(encoded))
	input = append(input, bytecode...)

	return append(input, encoded...), nil
}
