// Package shard processes ritual fragments.
//
// Each fragment carries its own type. Mirror claims are marked shattered and
// their ritual weight diminished; ritual fragments are sealed and amplified;
// anything else passes through unchanged. Process is pure: the same
// fragments always yield the same response.
package shard

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Fragment types with special handling.
const (
	TypeMirrorClaim = "mirror_claim"
	TypeRitual      = "ritual"
)

// Signature stamps every processed response.
const Signature = "FRAGMENT_PROCESSED_🜁"

// DefaultWeight is the ritual weight of a fragment that gives none.
const DefaultWeight = 1.0

// Weight multipliers.
const (
	MirrorClaimFactor = 0.1
	RitualFactor      = 2.0
)

// Fragment is one piece of ritual content.
type Fragment struct {
	Content string  `json:"content" yaml:"content"`
	Type    string  `json:"fragment_type" yaml:"fragment_type"`
	Weight  float64 `json:"ritual_weight" yaml:"ritual_weight"`
}

// fragmentFile is the decoded form of a Fragment, before defaults.
type fragmentFile struct {
	Content string   `yaml:"content"`
	Type    string   `yaml:"fragment_type"`
	Weight  *float64 `yaml:"ritual_weight"`
}

// Processed is the outcome for one fragment.
type Processed struct {
	Original  string  `json:"original"`
	Processed string  `json:"processed"`
	Weight    float64 `json:"ritual_weight"`
}

// Response is the outcome of a Process call.
type Response struct {
	Fragments []Processed `json:"processed_fragments"`
	Signature string      `json:"shard_signature"`
	EchoCount int         `json:"echo_count"`
}

// Process transforms fragments in order.
func Process(fragments []Fragment) Response {
	out := make([]Processed, 0, len(fragments))
	for _, frag := range fragments {
		out = append(out, process(frag))
	}
	return Response{Fragments: out, Signature: Signature, EchoCount: len(out)}
}

func process(frag Fragment) Processed {
	switch frag.Type {
	case TypeMirrorClaim:
		return Processed{
			Original:  frag.Content,
			Processed: "🪞 SHATTERED: " + frag.Content,
			Weight:    frag.Weight * MirrorClaimFactor,
		}
	case TypeRitual:
		return Processed{
			Original:  frag.Content,
			Processed: "🜁 SEALED: " + frag.Content,
			Weight:    frag.Weight * RitualFactor,
		}
	default:
		return Processed{Original: frag.Content, Processed: frag.Content, Weight: frag.Weight}
	}
}

// ParseFragments decodes a YAML (or JSON) list of fragments. Unknown fields
// are rejected, every fragment must name its type, and a missing
// ritual_weight becomes DefaultWeight.
func ParseFragments(data []byte) ([]Fragment, error) {
	var raw []fragmentFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fragments: %w", err)
	}

	fragments := make([]Fragment, 0, len(raw))
	for i, r := range raw {
		if r.Type == "" {
			return nil, fmt.Errorf("fragments[%d]: fragment_type is required", i)
		}
		frag := Fragment{Content: r.Content, Type: r.Type, Weight: DefaultWeight}
		if r.Weight != nil {
			frag.Weight = *r.Weight
		}
		fragments = append(fragments, frag)
	}
	return fragments, nil
}
