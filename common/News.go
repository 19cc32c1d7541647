package common

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Credibility bands for news items whose credibility is not given explicitly.
const (
	TrueNewsCredibilityMin  = 0.7
	TrueNewsCredibilityMax  = 0.9
	FalseNewsCredibilityMin = 0.1
	FalseNewsCredibilityMax = 0.3
)

// News is a single immutable news item. It is created once by its source
// and shared by pointer among every agent that receives it.
type News struct {
	id          int
	party       Party
	polarity    Polarity
	veracity    bool
	credibility float64
}

func (n *News) GetID() int              { return n.id }
func (n *News) GetParty() Party         { return n.party }
func (n *News) GetPolarity() Polarity   { return n.polarity }
func (n *News) GetVeracity() bool       { return n.veracity }
func (n *News) GetCredibility() float64 { return n.credibility }

func (n *News) String() string {
	return fmt.Sprintf("News#%d{party=%s polarity=%+d veracity=%t credibility=%.2f}",
		n.id, n.party, n.polarity, n.veracity, n.credibility)
}

// NewsOptions lists the attributes a caller may fix when minting news.
// Nil fields are drawn from the run's generator.
type NewsOptions struct {
	Party       *Party
	Polarity    *Polarity
	Veracity    *bool
	Credibility *float64
}

// NewsFactory mints news with globally unique, monotonically increasing ids.
type NewsFactory struct {
	nextID int
	src    RandSource
}

func NewNewsFactory(src RandSource) *NewsFactory {
	return &NewsFactory{src: src}
}

func (f *NewsFactory) NextID() int { return f.nextID }

// SetNextID is used when resuming a run from a snapshot.
func (f *NewsFactory) SetNextID(id int) { f.nextID = id }

func (f *NewsFactory) SetSource(src RandSource) { f.src = src }

// Mint creates a news item, drawing every attribute not fixed by opts.
func (f *NewsFactory) Mint(opts NewsOptions) (*News, error) {
	n := &News{}

	if opts.Party != nil {
		if !opts.Party.Valid() {
			return nil, fmt.Errorf("%w: party %q", ErrInvalidNews, *opts.Party)
		}
		n.party = *opts.Party
	} else {
		n.party = Parties[f.src.Intn(len(Parties))]
	}

	if opts.Polarity != nil {
		if !opts.Polarity.Valid() {
			return nil, fmt.Errorf("%w: polarity %d", ErrInvalidNews, *opts.Polarity)
		}
		n.polarity = *opts.Polarity
	} else {
		n.polarity = Polarities[f.src.Intn(len(Polarities))]
	}

	if opts.Veracity != nil {
		n.veracity = *opts.Veracity
	} else {
		n.veracity = f.src.Intn(2) == 1
	}

	if opts.Credibility != nil {
		c := *opts.Credibility
		if c < 0 || c > 1 {
			return nil, fmt.Errorf("%w: credibility %v outside [0,1]", ErrInvalidNews, c)
		}
		n.credibility = c
	} else {
		n.credibility = CredibilityBand(n.veracity, f.src)
	}

	n.id = f.nextID
	f.nextID++
	return n, nil
}

// CredibilityBand draws a news credibility from the band matching veracity.
func CredibilityBand(veracity bool, src RandSource) float64 {
	u := distuv.Uniform{Min: FalseNewsCredibilityMin, Max: FalseNewsCredibilityMax, Src: src}
	if veracity {
		u.Min, u.Max = TrueNewsCredibilityMin, TrueNewsCredibilityMax
	}
	return u.Rand()
}

// RestoreNews rebuilds a news item with a known id, for snapshot restore.
func RestoreNews(id int, party Party, polarity Polarity, veracity bool, credibility float64) (*News, error) {
	if !party.Valid() || !polarity.Valid() || credibility < 0 || credibility > 1 {
		return nil, fmt.Errorf("%w: news %d", ErrInvalidNews, id)
	}
	return &News{id: id, party: party, polarity: polarity, veracity: veracity, credibility: credibility}, nil
}

// Ptr is a small helper for filling NewsOptions.
func Ptr[T any](v T) *T { return &v }
