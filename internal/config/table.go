package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/yanagihara/internal/geometry"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/scoring"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidTable is returned when a clinical table fails validation.
var ErrInvalidTable = errors.New("invalid clinical table")

// Table is the clinical configuration: cut-offs, landmark assignments and
// calibration constant. A table file only needs the keys it changes; the
// rest keep their defaults.
type Table struct {
	IrisDiameterMM  float64            `json:"iris_diameter_mm" validate:"gt=0,lte=20"`
	CheekPolicy     string             `json:"cheek_policy" validate:"omitempty,oneof=best primary"`
	CheekCandidates int                `json:"cheek_candidates" validate:"gte=1,lte=16"`
	CheekBand       float64            `json:"cheek_band" validate:"gt=0,lte=1"`
	Thresholds      scoring.Thresholds `json:"thresholds"`
	Registry        landmark.Registry  `json:"registry"`
}

// DefaultTable returns the built-in clinical table.
func DefaultTable() Table {
	def := scoring.DefaultConfig()
	return Table{
		IrisDiameterMM:  geometry.IrisDiameterMM,
		CheekPolicy:     "best",
		CheekCandidates: def.CheekCandidates,
		CheekBand:       def.CheekBand,
		Thresholds:      def.Thresholds,
		Registry:        def.Registry,
	}
}

// DecodeTable reads a JSON table over the defaults and validates it.
func DecodeTable(r io.Reader) (Table, error) {
	t := DefaultTable()
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// LoadTable reads the table at path. An empty path yields the defaults.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open clinical table: %w", err)
	}
	defer f.Close()

	t, err := DecodeTable(f)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteTable encodes t as indented JSON.
func WriteTable(w io.Writer, t Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field of the table.
func (t Table) Validate() error {
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			v := verrs[0]
			return fmt.Errorf("%w: %s fails %q (value %v)", ErrInvalidTable, v.Namespace(), v.Tag(), v.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	return nil
}

// Unreachable returns the names of thresholds whose 2-point tier can never
// be awarded, sorted.
func (t Table) Unreachable() []string {
	var names []string
	for name, th := range t.Thresholds.Named() {
		if th.Unreachable() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Warn logs every unreachable threshold. Such tables are legal but usually
// a typo. A threshold left at its standard value is only logged at debug
// level: the standard whistle ratio [50, 30] awards 4 or 0 and never 2.
func (t Table) Warn(log logrus.FieldLogger) {
	named := t.Thresholds.Named()
	standard := scoring.DefaultThresholds().Named()
	for _, name := range t.Unreachable() {
		entry := log.WithFields(logrus.Fields{
			"threshold": name,
			"tiers":     named[name].String(),
		})
		if named[name] == standard[name] {
			entry.Debug("2-point tier is unreachable in the standard table")
			continue
		}
		entry.Warn("2-point tier is unreachable")
	}
}

// Engine turns the table into a scoring engine configuration.
func (t Table) Engine() (scoring.Config, error) {
	policy, err := scoring.PolicyByName(t.CheekPolicy)
	if err != nil {
		return scoring.Config{}, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	return scoring.Config{
		Registry:        t.Registry,
		Thresholds:      t.Thresholds,
		IrisDiameterMM:  t.IrisDiameterMM,
		Policy:          policy,
		CheekCandidates: t.CheekCandidates,
		CheekBand:       t.CheekBand,
	}, nil
}
