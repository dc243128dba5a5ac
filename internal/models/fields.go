package models

import (
	"fmt"
	"strings"
)

// FieldKey names one of the matter form fields
type FieldKey string

const (
	FieldContractType     FieldKey = "contractType"
	FieldClientName       FieldKey = "clientName"
	FieldIndustry         FieldKey = "industry"
	FieldFirstParty       FieldKey = "firstParty"
	FieldSecondParty      FieldKey = "secondParty"
	FieldTermDuration     FieldKey = "termDuration"
	FieldBusinessPurpose  FieldKey = "businessPurpose"
	FieldGoverningLaw     FieldKey = "governingLaw"
	FieldRiskProfile      FieldKey = "riskProfile"
	FieldNegotiationFocus FieldKey = "negotiationFocus"
)

// FieldKeys lists every form field in display order
var FieldKeys = []FieldKey{
	FieldContractType,
	FieldClientName,
	FieldIndustry,
	FieldFirstParty,
	FieldSecondParty,
	FieldTermDuration,
	FieldBusinessPurpose,
	FieldGoverningLaw,
	FieldRiskProfile,
	FieldNegotiationFocus,
}

// FieldMap holds the matter form values. Empty strings mean "not provided".
type FieldMap struct {
	ContractType     string `yaml:"contractType,omitempty" json:"contractType,omitempty"`
	ClientName       string `yaml:"clientName,omitempty" json:"clientName,omitempty"`
	Industry         string `yaml:"industry,omitempty" json:"industry,omitempty"`
	FirstParty       string `yaml:"firstParty,omitempty" json:"firstParty,omitempty"`
	SecondParty      string `yaml:"secondParty,omitempty" json:"secondParty,omitempty"`
	TermDuration     string `yaml:"termDuration,omitempty" json:"termDuration,omitempty"`
	BusinessPurpose  string `yaml:"businessPurpose,omitempty" json:"businessPurpose,omitempty"`
	GoverningLaw     string `yaml:"governingLaw,omitempty" json:"governingLaw,omitempty"`
	RiskProfile      string `yaml:"riskProfile,omitempty" json:"riskProfile,omitempty"`
	NegotiationFocus string `yaml:"negotiationFocus,omitempty" json:"negotiationFocus,omitempty"`
}

// ParseFieldKey resolves a key name, returning false for unknown keys
func ParseFieldKey(name string) (FieldKey, bool) {
	for _, key := range FieldKeys {
		if string(key) == name {
			return key, true
		}
	}
	return "", false
}

// Label returns a human readable label for the key
func (k FieldKey) Label() string {
	switch k {
	case FieldContractType:
		return "Contract type"
	case FieldClientName:
		return "Client / matter"
	case FieldIndustry:
		return "Industry"
	case FieldFirstParty:
		return "First party"
	case FieldSecondParty:
		return "Second party"
	case FieldTermDuration:
		return "Term duration"
	case FieldBusinessPurpose:
		return "Business purpose"
	case FieldGoverningLaw:
		return "Governing law"
	case FieldRiskProfile:
		return "Risk profile"
	case FieldNegotiationFocus:
		return "Negotiation focus"
	default:
		return string(k)
	}
}

func (f *FieldMap) ptr(key FieldKey) *string {
	switch key {
	case FieldContractType:
		return &f.ContractType
	case FieldClientName:
		return &f.ClientName
	case FieldIndustry:
		return &f.Industry
	case FieldFirstParty:
		return &f.FirstParty
	case FieldSecondParty:
		return &f.SecondParty
	case FieldTermDuration:
		return &f.TermDuration
	case FieldBusinessPurpose:
		return &f.BusinessPurpose
	case FieldGoverningLaw:
		return &f.GoverningLaw
	case FieldRiskProfile:
		return &f.RiskProfile
	case FieldNegotiationFocus:
		return &f.NegotiationFocus
	default:
		return nil
	}
}

// Get returns the value stored for key, or "" for unknown keys
func (f FieldMap) Get(key FieldKey) string {
	if p := f.ptr(key); p != nil {
		return *p
	}
	return ""
}

// Set stores value under key
func (f *FieldMap) Set(key FieldKey, value string) error {
	p := f.ptr(key)
	if p == nil {
		return fmt.Errorf("unknown field %q", key)
	}
	*p = value
	return nil
}

// Has reports whether key holds a non-blank value
func (f FieldMap) Has(key FieldKey) bool {
	return strings.TrimSpace(f.Get(key)) != ""
}

// Merge returns a copy of f where every non-empty value of other wins
func (f FieldMap) Merge(other FieldMap) FieldMap {
	out := f
	for _, key := range FieldKeys {
		if v := other.Get(key); v != "" {
			_ = out.Set(key, v)
		}
	}
	return out
}

// ToMap flattens the non-empty fields into a string map
func (f FieldMap) ToMap() map[string]string {
	out := make(map[string]string)
	for _, key := range FieldKeys {
		if v := f.Get(key); v != "" {
			out[string(key)] = v
		}
	}
	return out
}

// FieldMapFromMap builds a FieldMap from loosely keyed input
func FieldMapFromMap(values map[string]string) (FieldMap, error) {
	var f FieldMap
	for name, v := range values {
		key, ok := ParseFieldKey(name)
		if !ok {
			return FieldMap{}, fmt.Errorf("unknown field %q", name)
		}
		_ = f.Set(key, v)
	}
	return f, nil
}
