package fiscal

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"
)

const (
	emissionDateLayout = "20060102"
	emissionTimeLayout = "1504"
	sealBytes          = 16
)

// SealInput is the exact set of fiscal fields a seal binds
type SealInput struct {
	SectorCode        string
	TicketTypeCode    string
	ProgressiveNumber int64
	EmissionDate      string
	EmissionTime      string
	GrossAmount       decimal.Decimal
}

// Sealer computes and verifies fiscal seals. The zero key yields an unkeyed
// digest.
type Sealer struct {
	key []byte
}

func NewSealer(key string) (*Sealer, error) {
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("fiscal seal key must be at most %d bytes", blake2b.Size)
	}
	return &Sealer{key: []byte(key)}, nil
}

// ComputeSeal is deterministic: the same fields always give the same 32
// uppercase hex characters.
func (s *Sealer) ComputeSeal(in SealInput) string {
	h := s.newHash()
	h.Write([]byte(canonical(in)))
	sum := h.Sum(nil)
	return strings.ToUpper(hex.EncodeToString(sum[:sealBytes]))
}

func (s *Sealer) VerifySeal(in SealInput, seal string) bool {
	expected := s.ComputeSeal(in)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToUpper(seal))) == 1
}

func (s *Sealer) newHash() hash.Hash {
	var key []byte
	if len(s.key) > 0 {
		key = s.key
	}
	h, err := blake2b.New256(key)
	if err != nil {
		// key length is checked in NewSealer
		panic(err)
	}
	return h
}

func canonical(in SealInput) string {
	return strings.Join([]string{
		in.SectorCode,
		in.TicketTypeCode,
		strconv.FormatInt(in.ProgressiveNumber, 10),
		in.EmissionDate,
		in.EmissionTime,
		in.GrossAmount.StringFixed(2),
	}, "|")
}

// EmissionStamp formats now as the fiscal date and time strings in loc
func EmissionStamp(now time.Time, loc *time.Location) (date, clock string) {
	local := now.In(loc)
	return local.Format(emissionDateLayout), local.Format(emissionTimeLayout)
}

// LoadLocation falls back to UTC for an empty name
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid fiscal timezone %q: %w", name, err)
	}
	return loc, nil
}
