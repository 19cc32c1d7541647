package agents

import (
	"time"

	baseServer "github.com/MattSScott/basePlatformSOMAS/v2/pkg/server"
	"go.uber.org/zap"

	common "github.com/harryknee/NewsDiffusion/common"
)

type sentNews struct {
	sender   string
	newsID   int
	upstream string
}

// stubServer stands in for the environment server: draws come from a
// script and sends are recorded instead of routed.
type stubServer struct {
	*baseServer.BaseServer[common.IExtendedAgent]

	params      common.DiffusionParams
	draws       []float64
	fallback    float64
	drawn       int
	sent        []sentNews
	conversions []common.ConversionRecord
	step        int
}

func newStubServer(fallback float64, draws ...float64) *stubServer {
	return &stubServer{
		BaseServer: baseServer.CreateBaseServer[common.IExtendedAgent](1, 1, time.Millisecond, 1),
		params:     common.DefaultDiffusionParams(),
		draws:      draws,
		fallback:   fallback,
	}
}

func (s *stubServer) DrawUniform() float64 {
	s.drawn++
	if len(s.draws) == 0 {
		return s.fallback
	}
	d := s.draws[0]
	s.draws = s.draws[1:]
	return d
}

func (s *stubServer) SendNews(sender common.IExtendedAgent, news *common.News, upstream string) error {
	s.sent = append(s.sent, sentNews{sender: sender.GetName(), newsID: news.GetID(), upstream: upstream})
	return nil
}

func (s *stubServer) RecordConversion(rec common.ConversionRecord) {
	s.conversions = append(s.conversions, rec)
}

func (s *stubServer) GetDiffusionParams() common.DiffusionParams { return s.params }
func (s *stubServer) GetPosition(cell int) (int, int)            { return cell, 0 }
func (s *stubServer) GetStep() int                               { return s.step }
func (s *stubServer) Logger() *zap.Logger                        { return zap.NewNop() }

var newsIDs int

func testNews(party common.Party, polarity common.Polarity, veracity bool, credibility float64) *common.News {
	newsIDs++
	n, err := common.RestoreNews(newsIDs, party, polarity, veracity, credibility)
	if err != nil {
		panic(err)
	}
	return n
}
