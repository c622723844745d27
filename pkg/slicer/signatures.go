package slicer

import (
	"sort"

	"github.com/kelloggm/specimin/pkg/resolve"
)

// SignatureView is read-only access to a set of signatures.
type SignatureView interface {
	Contains(sig resolve.Signature) bool
	Len() int
	Sorted() []resolve.Signature
}

// SignatureSet is a set of member signatures. The zero value is empty
// and ready to use; a nil set reports no members.
type SignatureSet struct {
	m map[resolve.Signature]struct{}
}

// NewSignatureSet returns a set holding sigs.
func NewSignatureSet(sigs ...resolve.Signature) *SignatureSet {
	s := &SignatureSet{}
	for _, sig := range sigs {
		s.Add(sig)
	}

	return s
}

// Add inserts sig and reports whether it was new.
func (s *SignatureSet) Add(sig resolve.Signature) bool {
	if s.m == nil {
		s.m = make(map[resolve.Signature]struct{})
	}

	if _, ok := s.m[sig]; ok {
		return false
	}

	s.m[sig] = struct{}{}

	return true
}

// Contains reports whether sig is in the set.
func (s *SignatureSet) Contains(sig resolve.Signature) bool {
	if s == nil {
		return false
	}

	_, ok := s.m[sig]

	return ok
}

// Len returns the number of signatures.
func (s *SignatureSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.m)
}

// Sorted lists the signatures in ascending order.
func (s *SignatureSet) Sorted() []resolve.Signature {
	if s == nil {
		return nil
	}

	out := make([]resolve.Signature, 0, len(s.m))
	for sig := range s.m {
		out = append(out, sig)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Strings lists the signatures in ascending order as plain strings.
func (s *SignatureSet) Strings() []string {
	sorted := s.Sorted()

	out := make([]string, len(sorted))
	for i, sig := range sorted {
		out[i] = string(sig)
	}

	return out
}

// union is the retained set seen by the pruner.
type union []SignatureView

func (u union) Contains(sig resolve.Signature) bool {
	for _, v := range u {
		if v != nil && v.Contains(sig) {
			return true
		}
	}

	return false
}
