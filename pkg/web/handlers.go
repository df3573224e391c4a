package web

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mKenfenheuer/pi-assistant/internal/entries"
	"github.com/mKenfenheuer/pi-assistant/pkg/assist"
	"github.com/mKenfenheuer/pi-assistant/pkg/device"
)

type entryRequest struct {
	Hostname string `json:"hostname"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleListEntries(c *fiber.Ctx) error {
	return c.JSON(s.store.List())
}

func (s *Server) handleCreateEntry(c *fiber.Ctx) error {
	var req entryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	entry, err := s.store.Create(req.Hostname)
	if err != nil {
		return entryError(c, err)
	}

	s.registerPlayer(entry)
	s.log.Info("device registered", "hostname", entry.Hostname, "entry_id", entry.ID)
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (s *Server) handleReconfigureEntry(c *fiber.Ctx) error {
	var req entryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	entry, err := s.store.Reconfigure(c.Params("id"), req.Hostname)
	if err != nil {
		return entryError(c, err)
	}

	// The hostname changed, so the proxy and its derived identity are
	// rebuilt from scratch.
	s.registerPlayer(entry)
	s.log.Info("device reconfigured", "hostname", entry.Hostname, "entry_id", entry.ID)
	return c.JSON(entry)
}

func (s *Server) handleRemoveEntry(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.store.Remove(id); err != nil {
		return entryError(c, err)
	}
	s.unregisterPlayer(id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handlePlayerState(c *fiber.Ctx) error {
	player, ok := s.player(c.Params("id"))
	if !ok {
		return notFound(c, "unknown player")
	}

	player.RefreshState()
	state := player.State()
	return c.JSON(fiber.Map{
		"device_id":           player.ID(),
		"availability":        state.Availability,
		"state":               state.Playback,
		"volume_level":        state.VolumeLevel,
		"is_volume_muted":     state.VolumeMuted,
		"volume_step":         state.VolumeStep,
		"media_duration":      state.MediaDuration,
		"media_position":      state.MediaPosition,
		"position_updated_at": state.PositionUpdatedAt,
		"media_content_type":  state.ContentType,
		"repeat":              state.Repeat,
		"shuffle":             state.Shuffle,
		"source":              state.Source,
	})
}

type commandRequest struct {
	Volume   *float64 `json:"volume,omitempty"`
	Position *float64 `json:"position,omitempty"`
	Mute     *bool    `json:"mute,omitempty"`
	URL      string   `json:"url,omitempty"`
}

func (s *Server) handlePlayerCommand(c *fiber.Ctx) error {
	player, ok := s.player(c.Params("id"))
	if !ok {
		return notFound(c, "unknown player")
	}

	var req commandRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	var dispatched bool
	switch command := c.Params("command"); command {
	case "media_play":
		dispatched = player.Play()
	case "media_pause":
		dispatched = player.Pause()
	case "media_stop":
		dispatched = player.Stop()
	case "media_seek":
		if req.Position == nil {
			return badRequest(c, "position required")
		}
		dispatched = player.Seek(*req.Position)
	case "set_volume":
		if req.Volume == nil {
			return badRequest(c, "volume required")
		}
		var err error
		dispatched, err = player.SetVolume(*req.Volume)
		if errors.Is(err, device.ErrVolumeOutOfRange) {
			return badRequest(c, err.Error())
		}
	case "volume_mute":
		mute := true
		if req.Mute != nil {
			mute = *req.Mute
		}
		dispatched = player.Mute(mute)
	case "play_media":
		if req.URL == "" {
			return badRequest(c, "url required")
		}
		dispatched = player.PlayMedia(c.Context(), req.URL)
	default:
		return badRequest(c, "unknown command")
	}

	return c.JSON(fiber.Map{"success": dispatched})
}

// assistEventFrame is one message on the /ws/assist stream.
type assistEventFrame struct {
	RunID    string            `json:"run_id"`
	DeviceID string            `json:"device_id"`
	Kind     assist.EventKind  `json:"kind,omitempty"`
	Payload  map[string]string `json:"payload,omitempty"`
	Finished bool              `json:"finished,omitempty"`
}

func (s *Server) handleAssistRun(c *fiber.Ctx) error {
	player, ok := s.player(c.Params("id"))
	if !ok {
		return notFound(c, "unknown player")
	}

	var opts assist.RunOptions
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	deviceID := player.ID()
	var run *assist.Pipeline
	run = assist.New(s.source, s.selector, player,
		func(ev assist.Event) {
			s.hub.BroadcastJSON(assistEventFrame{
				RunID:    run.RunID(),
				DeviceID: deviceID,
				Kind:     ev.Kind,
				Payload:  ev.Payload,
			})
		},
		func() {
			s.hub.BroadcastJSON(assistEventFrame{
				RunID:    run.RunID(),
				DeviceID: deviceID,
				Finished: true,
			})
		})

	go func() {
		if err := run.Run(context.Background(), deviceID, opts); err != nil {
			s.log.Error("assist run failed", "run_id", run.RunID(), "error", err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"run_id": run.RunID()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: msg})
}

func entryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, entries.ErrDuplicateHostname):
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: err.Error()})
	case errors.Is(err, entries.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, entries.ErrEmptyHostname):
		return badRequest(c, err.Error())
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: err.Error()})
	}
}
