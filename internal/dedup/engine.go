// Roomwarden - Group Chat Dedup and Moderation Storage Engine
// Copyright 2026 N. Morell (nmorell)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nmorell/roomwarden

// Package dedup decides whether inbound content is a first sighting or a
// repeat, and turns per-fingerprint verdicts into a message-level
// moderation status for the transport layer to execute. The engine never
// acts on the platform itself; it only records state and renders
// decisions.
package dedup

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nmorell/roomwarden/internal/logging"
	"github.com/nmorell/roomwarden/internal/metrics"
	"github.com/nmorell/roomwarden/internal/models"
	"github.com/nmorell/roomwarden/internal/store"
)

// duplicatePlaceholder replaces a repeated link when the rest of the
// message survives.
const duplicatePlaceholder = "DUPLICATED"

// Recorder is the persistence surface the engine needs. Satisfied by
// *repository.Repository.
type Recorder interface {
	FindContent(roomID int64, fingerprint string) (models.MediaRecord, bool)
	RecordFirstSeen(ev models.ContentEvent, now time.Time) (models.MediaRecord, bool)
	RecordDuplicate(ev models.ContentEvent, now time.Time) bool
	UpsertIdentity(ev models.IdentityEvent, now time.Time) bool
	GetRoomConfig(roomID int64) models.RoomConfig
}

// Engine evaluates messages against the store.
type Engine struct {
	repo Recorder
}

// NewEngine creates an engine over the given recorder.
func NewEngine(repo Recorder) *Engine {
	return &Engine{repo: repo}
}

// Message is one inbound group message, pre-digested by the transport
// layer: text is raw, media attachments arrive already fingerprinted with
// the platform's stable content id. A photo delivered in several sizes
// yields one attachment per size, all sharing the message id.
type Message struct {
	RoomID     int64
	MessageID  int64
	SenderID   int64
	SenderName string
	RoomName   string
	Forwarded  bool
	Text       string
	Media      []models.ContentEvent
}

// EvaluateMessage runs the full moderation policy for one message:
// refresh the sender's membership, apply the forward gate, then dedup
// either the links in the text or the media attachments. The returned
// status tells the caller whether to remove the message and whether to
// post Text as a reply.
func (e *Engine) EvaluateMessage(msg Message, now time.Time) models.Status {
	e.repo.UpsertIdentity(models.IdentityEvent{
		IdentityID:  msg.SenderID,
		RoomID:      msg.RoomID,
		DisplayName: msg.SenderName,
		RoomName:    msg.RoomName,
	}, now)

	cfg := e.repo.GetRoomConfig(msg.RoomID)
	ok := models.Status{
		Text: fmt.Sprintf("Content will be unique for %d days", cfg.DuplicateWindowDays),
	}

	if msg.Forwarded && !cfg.AllowForwards {
		return models.Status{
			Act:     true,
			Respond: true,
			Text:    fmt.Sprintf("This room does not allow forwarded messages @%s", msg.SenderName),
		}
	}

	if urls := ExtractURLs(msg.Text); len(urls) > 0 {
		return e.evaluateURLs(msg, urls, cfg, ok, now)
	}
	return e.evaluateMedia(msg, cfg, ok, now)
}

// evaluateURLs dedups every link in the message. A single repeated link
// condemns the message; with several links, one unique link rescues it
// and the repeated ones are blanked out of the returned text instead.
func (e *Engine) evaluateURLs(msg Message, urls []URLMatch, cfg models.RoomConfig, ok models.Status, now time.Time) models.Status {
	type urlStatus struct {
		status models.Status
		url    string
	}

	statuses := make([]urlStatus, 0, len(urls))
	for _, u := range urls {
		ev := models.ContentEvent{
			RoomID:      msg.RoomID,
			MessageID:   msg.MessageID,
			Kind:        models.KindURL,
			Fingerprint: u.Fingerprint,
		}

		if cfg.AllowDuplicateLinks {
			e.repo.RecordFirstSeen(ev, now)
			statuses = append(statuses, urlStatus{status: ok, url: u.URL})
			continue
		}

		verdict := e.evaluateEvent(ev, now)
		statuses = append(statuses, urlStatus{
			status: e.verdictStatus(verdict, models.KindURL, cfg, ok),
			url:    u.URL,
		})
	}

	if len(statuses) == 1 {
		return statuses[0].status
	}

	rescued := false
	for _, s := range statuses {
		if !s.status.Act {
			rescued = true
			break
		}
	}
	if !rescued {
		return statuses[0].status
	}

	// At least one link is new: the message survives, with the repeats
	// blanked out of the text.
	result := ok
	text := msg.Text
	for _, s := range statuses {
		if s.status.Act {
			text = strings.ReplaceAll(text, s.url, duplicatePlaceholder)
		} else {
			result = s.status
		}
	}
	if text != msg.Text {
		metrics.DedupRescues.Inc()
	}
	result.Text = text
	return result
}

// evaluateMedia dedups the message's attachments. Any repeated
// attachment condemns the whole message.
func (e *Engine) evaluateMedia(msg Message, cfg models.RoomConfig, ok models.Status, now time.Time) models.Status {
	result := ok
	for _, ev := range msg.Media {
		ev.RoomID = msg.RoomID
		ev.MessageID = msg.MessageID

		if cfg.AllowDuplicateMedia {
			e.repo.RecordFirstSeen(ev, now)
			continue
		}

		verdict := e.evaluateEvent(ev, now)
		if verdict.Duplicate {
			result = e.verdictStatus(verdict, ev.Kind, cfg, ok)
		}
	}
	return result
}

// EvaluateEvent dedups a single fingerprinted event and returns the raw
// verdict, for callers that render their own response.
func (e *Engine) EvaluateEvent(ev models.ContentEvent, now time.Time) models.Verdict {
	return e.evaluateEvent(ev, now)
}

// evaluateEvent applies the first-seen transition rule. A stored record
// past the retention window does not count as a sighting: the sweep may
// not have caught it yet, so freshness is checked here explicitly.
func (e *Engine) evaluateEvent(ev models.ContentEvent, now time.Time) models.Verdict {
	rec, found := e.repo.FindContent(ev.RoomID, ev.Fingerprint)
	if found && store.Keep(rec.SeenAt, now) {
		e.repo.RecordDuplicate(ev, now)
		metrics.RecordVerdict(string(ev.Kind), true)
		logging.Debug().
			Int64("room_id", ev.RoomID).
			Int64("message_id", ev.MessageID).
			Int64("original_message_id", rec.MessageID).
			Str("kind", string(ev.Kind)).
			Msg("duplicate content")
		return models.Verdict{
			Duplicate:         true,
			OriginalRoomID:    rec.RoomID,
			OriginalMessageID: rec.MessageID,
		}
	}

	e.repo.RecordFirstSeen(ev, now)
	metrics.RecordVerdict(string(ev.Kind), false)
	return models.Verdict{}
}

// verdictStatus renders a verdict as a message-level status.
func (e *Engine) verdictStatus(v models.Verdict, kind models.ContentKind, cfg models.RoomConfig, ok models.Status) models.Status {
	if !v.Duplicate {
		return ok
	}
	return models.Status{
		Act:     true,
		Respond: true,
		Text: fmt.Sprintf(
			"Duplicate %s: already shared in the last %d days.\nSee the original message: %s",
			kind, cfg.DuplicateWindowDays,
			OriginalMessageLink(v.OriginalRoomID, v.OriginalMessageID),
		),
	}
}

// EvaluateJoin applies the display-name policy when an identity joins a
// room via an invite link. With BlockNonLatinNames set, a name carrying
// non-Latin characters gets an act-status; the transport layer performs
// the actual ban.
func (e *Engine) EvaluateJoin(roomID, identityID int64, displayName string, now time.Time) models.Status {
	e.repo.UpsertIdentity(models.IdentityEvent{
		IdentityID:  identityID,
		RoomID:      roomID,
		DisplayName: displayName,
	}, now)

	cfg := e.repo.GetRoomConfig(roomID)
	if cfg.BlockNonLatinNames && ContainsNonLatin(displayName) {
		logging.Info().
			Int64("room_id", roomID).
			Int64("identity_id", identityID).
			Msg("non-latin display name blocked on join")
		return models.Status{Act: true}
	}
	return models.Status{}
}

// RoomLinkID converts a supergroup room id to the id used in message
// links: the "-100" prefix stripped off. Ids without the prefix have no
// public link form and map to zero.
func RoomLinkID(roomID int64) int64 {
	s := strconv.FormatInt(roomID, 10)
	stripped, found := strings.CutPrefix(s, "-100")
	if !found {
		return 0
	}
	id, err := strconv.ParseInt(stripped, 10, 64)
	if err != nil {
		return roomID
	}
	return id
}

// OriginalMessageLink renders the t.me deep link to a previously seen
// message.
func OriginalMessageLink(roomID, messageID int64) string {
	return fmt.Sprintf("https://t.me/c/%d/%d", RoomLinkID(roomID), messageID)
}
