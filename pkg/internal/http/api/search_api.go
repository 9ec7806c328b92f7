package api

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/search"
)

const searchSessionCookie = "search_session"

// Each browser session gets its own composer so one user's pending
// tag-type choice never bleeds into another's suggestions. Sessions are
// keyed by cookie and dropped after an hour of silence.
type composerEntry struct {
	composer *search.Composer
	lastSeen time.Time
}

type composerRegistry struct {
	mu      sync.Mutex
	build   func() *search.Composer
	entries map[string]*composerEntry
}

func newComposerRegistry(build func() *search.Composer) *composerRegistry {
	return &composerRegistry{
		build:   build,
		entries: make(map[string]*composerEntry),
	}
}

func (r *composerRegistry) resolve(id string) *search.Composer {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for key, entry := range r.entries {
		if now.Sub(entry.lastSeen) > time.Hour {
			delete(r.entries, key)
		}
	}

	entry, ok := r.entries[id]
	if !ok {
		entry = &composerEntry{composer: r.build()}
		r.entries[id] = entry
	}
	entry.lastSeen = now

	return entry.composer
}

func sessionComposer(c *fiber.Ctx) *search.Composer {
	id := c.Cookies(searchSessionCookie)
	if len(id) == 0 {
		id = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     searchSessionCookie,
			Value:    id,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return composers.resolve(id)
}

func suggestOptions(c *fiber.Ctx) error {
	composer := sessionComposer(c)

	options, err := composer.Suggest(c.UserContext(), c.Query("probe"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"state": composer.State(),
		"data":  options,
	})
}

func chooseOption(c *fiber.Ctx) error {
	var in search.Option
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	composer := sessionComposer(c)
	filter, committed := composer.Choose(in)

	resp := fiber.Map{
		"committed": committed,
		"state":     composer.State(),
	}
	if committed {
		resp["filter"] = filter
	}

	return c.JSON(resp)
}

func clearSearch(c *fiber.Ctx) error {
	composer := sessionComposer(c)
	composer.Clear()

	return c.JSON(fiber.Map{"state": composer.State()})
}
