package cli

import (
	"flag"
	"fmt"
	"strings"

	"tranxledger/internal/core"
)

// FilterFlags are the filter options shared by the read commands.
type FilterFlags struct {
	Direction string
	Purpose   string
	From      string
	To        string
	Min       string
	Max       string
	Desc      bool
}

func (ff *FilterFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&ff.Direction, "direction", "", "incoming|outgoing")
	fs.StringVar(&ff.Purpose, "purpose", "", "purpose tag, or \"none\" for untagged entries")
	fs.StringVar(&ff.From, "from", "", "inclusive lower time bound, e.g. 2024-01-01T00:00:00Z")
	fs.StringVar(&ff.To, "to", "", "inclusive upper time bound")
	fs.StringVar(&ff.Min, "min", "", "inclusive lower amount bound, CUR:value or bare value")
	fs.StringVar(&ff.Max, "max", "", "inclusive upper amount bound, CUR:value or bare value")
	fs.BoolVar(&ff.Desc, "desc", false, "newest first")
}

// Build converts the flags into a validated filter. Empty flags stay unset.
func (ff FilterFlags) Build() (core.TranxFilter, error) {
	var f core.TranxFilter

	if ff.Direction != "" {
		d, err := core.ParseDirection(ff.Direction)
		if err != nil {
			return core.TranxFilter{}, fmt.Errorf("%w: %v", core.ErrInvalidFilter, err)
		}
		f.Direction = &d
	}

	switch p := strings.TrimSpace(ff.Purpose); p {
	case "":
	case "none":
		f.Purpose = core.Ptr(core.PurposeNone)
	default:
		f.Purpose = core.Ptr(core.Purpose(p))
	}

	var err error
	if f.From, err = momentFlag(ff.From); err != nil {
		return core.TranxFilter{}, err
	}
	if f.To, err = momentFlag(ff.To); err != nil {
		return core.TranxFilter{}, err
	}
	if f.MinAmount, err = amountFlag(ff.Min); err != nil {
		return core.TranxFilter{}, err
	}
	if f.MaxAmount, err = amountFlag(ff.Max); err != nil {
		return core.TranxFilter{}, err
	}
	f.Descending = ff.Desc

	if err := f.Validate(); err != nil {
		return core.TranxFilter{}, err
	}
	return f, nil
}

func momentFlag(s string) (*core.Moment, error) {
	if s == "" {
		return nil, nil
	}
	m, err := core.ParseMoment(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidFilter, err)
	}
	return &m, nil
}

// amountFlag accepts "CUR:value" or a bare value, which bounds the scalar
// across currencies.
func amountFlag(s string) (*core.Amount, error) {
	if s == "" {
		return nil, nil
	}
	text := s
	bare := !strings.Contains(s, ":")
	if bare {
		text = "ANY:" + s
	}
	a, err := core.ParseAmount(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidFilter, err)
	}
	if bare {
		a.Currency = ""
	}
	return &a, nil
}
