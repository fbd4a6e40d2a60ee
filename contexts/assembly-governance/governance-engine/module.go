package governanceengine

import (
	"log/slog"
	"time"

	httpadapter "condogov/contexts/assembly-governance/governance-engine/adapters/http"
	"condogov/contexts/assembly-governance/governance-engine/adapters/memory"
	"condogov/contexts/assembly-governance/governance-engine/application/commands"
	"condogov/contexts/assembly-governance/governance-engine/application/queries"
	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	"condogov/contexts/assembly-governance/governance-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Sites           ports.SiteRepository
	Meetings        ports.MeetingRepository
	Idempotency     ports.IdempotencyStore
	Outbox          ports.OutboxWriter
	Clock           ports.Clock
	IDGen           ports.IDGenerator
	IdempotencyTTL  time.Duration
	MinutesLocation *time.Location
	Logger          *slog.Logger
}

// Seed is the site registry loaded into an in-memory module.
type Seed struct {
	Sites []entities.Site
	Units []entities.Unit
}

func NewModule(deps Dependencies) Module {
	meetingUseCase := commands.MeetingUseCase{
		Sites:           deps.Sites,
		Meetings:        deps.Meetings,
		Idempotency:     deps.Idempotency,
		Outbox:          deps.Outbox,
		Clock:           deps.Clock,
		IDGen:           deps.IDGen,
		IdempotencyTTL:  deps.IdempotencyTTL,
		MinutesLocation: deps.MinutesLocation,
		Logger:          deps.Logger,
	}
	proxyUseCase := commands.ProxyUseCase{
		Sites:    deps.Sites,
		Meetings: deps.Meetings,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	decisionUseCase := commands.DecisionUseCase{
		Sites:          deps.Sites,
		Meetings:       deps.Meetings,
		Idempotency:    deps.Idempotency,
		Outbox:         deps.Outbox,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	meetingQueries := queries.MeetingQueries{
		Sites:    deps.Sites,
		Meetings: deps.Meetings,
	}
	return Module{
		Handler: httpadapter.Handler{
			Meetings:  meetingUseCase,
			Proxies:   proxyUseCase,
			Decisions: decisionUseCase,
			Queries:   meetingQueries,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed Seed, logger *slog.Logger) Module {
	store := memory.NewStore()
	for _, site := range seed.Sites {
		store.SetSite(site)
	}
	for _, unit := range seed.Units {
		store.SetUnit(unit)
	}
	module := NewModule(Dependencies{
		Sites:          store,
		Meetings:       store,
		Idempotency:    store,
		Outbox:         store,
		Clock:          store,
		IDGen:          store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
