package model

import (
	"fmt"
	"strings"
	"time"
)

// ContractBlock names the recurring hours covered by a fixed-price contract.
type ContractBlock string

const (
	Block7x24 ContractBlock = "7x24" // every hour
	Block5x16 ContractBlock = "5x16" // Mon-Fri 06:00-22:00
	Block2x16 ContractBlock = "2x16" // Sat-Sun 06:00-22:00
	Block7x8  ContractBlock = "7x8"  // every day 22:00-06:00
)

// Contract is a fixed-price power purchase agreement covering SizeMW of the
// facility's capacity during Block hours. Start and End optionally bound the
// contract term; zero values leave that side open. Block hours are evaluated
// in Timezone (IANA name, UTC when empty).
type Contract struct {
	SizeMW   float64
	PriceMWh float64
	Block    ContractBlock
	Timezone string
	Start    time.Time
	End      time.Time

	loc *time.Location
}

func ParseContractBlock(s string) (ContractBlock, error) {
	b := ContractBlock(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case Block7x24, Block5x16, Block2x16, Block7x8:
		return b, nil
	}
	return "", fmt.Errorf("%w: unknown contract block %q (want 7x24, 5x16, 2x16 or 7x8)", ErrInvalidContractParams, s)
}

// Validate checks the contract against the facility it applies to. A contract
// larger than the facility is rejected, not capped.
func (c *Contract) Validate(facility FacilityParams) error {
	if c == nil {
		return nil
	}
	if !positiveFinite(c.SizeMW) {
		return fmt.Errorf("%w: contract size must be > 0 MW, got %v", ErrInvalidContractParams, c.SizeMW)
	}
	if c.SizeMW > facility.SizeMW {
		return fmt.Errorf("%w: contract size %v MW exceeds facility size %v MW",
			ErrInvalidContractParams, c.SizeMW, facility.SizeMW)
	}
	if !positiveFinite(c.PriceMWh) {
		return fmt.Errorf("%w: contract price must be > 0 $/MWh, got %v", ErrInvalidContractParams, c.PriceMWh)
	}
	if _, err := ParseContractBlock(string(c.Block)); err != nil {
		return err
	}
	if !c.Start.IsZero() && !c.End.IsZero() && c.End.Before(c.Start) {
		return fmt.Errorf("%w: contract end %s is before start %s",
			ErrInvalidContractParams, c.End.Format(time.RFC3339), c.Start.Format(time.RFC3339))
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalidContractParams, c.Timezone, err)
	}
	c.loc = loc
	return nil
}

// Covers reports whether the hour starting at t settles at the contract price.
func (c *Contract) Covers(t time.Time) bool {
	if c == nil {
		return false
	}
	if !c.Start.IsZero() && t.Before(c.Start) {
		return false
	}
	if !c.End.IsZero() && !t.Before(c.End) {
		return false
	}
	loc := c.loc
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	hour := local.Hour()
	weekend := local.Weekday() == time.Saturday || local.Weekday() == time.Sunday

	switch ContractBlock(strings.ToLower(string(c.Block))) {
	case Block7x24:
		return true
	case Block5x16:
		return !weekend && hour >= 6 && hour < 22
	case Block2x16:
		return weekend && hour >= 6 && hour < 22
	case Block7x8:
		return hour >= 22 || hour < 6
	default:
		return false
	}
}
