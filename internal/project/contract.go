// Package project provides the construction project record model, the
// portfolio collection and the CSV/JSON codecs used to load it.
package project

import (
	"fmt"
	"strings"
)

// ContractType represents the commercial form of a project contract.
type ContractType string

const (
	ContractGMP      ContractType = "GMP"
	ContractLumpSum  ContractType = "LUMP_SUM"
	ContractCostPlus ContractType = "COST_PLUS"
	ContractUnknown  ContractType = ""
)

// AllContractTypes returns all known contract types.
func AllContractTypes() []ContractType {
	return []ContractType{ContractGMP, ContractLumpSum, ContractCostPlus}
}

// ParseContractType parses a string into a ContractType, case-insensitive.
// Spaces and dashes are treated as underscores so "Lump Sum" and
// "cost-plus" are accepted.
func ParseContractType(s string) (ContractType, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "GMP", "GUARANTEED_MAXIMUM_PRICE":
		return ContractGMP, nil
	case "LUMP_SUM", "STIPULATED_SUM":
		return ContractLumpSum, nil
	case "COST_PLUS":
		return ContractCostPlus, nil
	case "":
		return ContractUnknown, nil
	default:
		return ContractUnknown, fmt.Errorf("invalid contract type: %q", s)
	}
}

// String returns the string representation of the contract type.
func (c ContractType) String() string {
	return string(c)
}

// Label returns a display label.
func (c ContractType) Label() string {
	switch c {
	case ContractGMP:
		return "GMP"
	case ContractLumpSum:
		return "Lump Sum"
	case ContractCostPlus:
		return "Cost Plus"
	default:
		return "Unknown"
	}
}
