package inmemdb

import (
	"sort"

	"github.com/trezcool/aulavirtual/core/message"
)

const previewLen = 100

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (db *DB) userName(id string) string {
	if rec, ok := db.users[id]; ok {
		return rec.FullName()
	}
	return ""
}

func (db *DB) canSee(t *message.Thread, userID string) bool {
	return t.Type == message.ThreadAnnouncement ||
		t.CreatedBy == userID || t.RecipientID == userID || contains(t.Participants, userID)
}

func copyThread(t *message.Thread) message.Thread {
	cp := *t
	cp.Participants = append(make([]string, 0, len(t.Participants)), t.Participants...)
	cp.ReadBy = append(make([]string, 0, len(t.ReadBy)), t.ReadBy...)
	return cp
}

// ListThreads returns the threads of userID and every announcement, most recent first.
func (db *DB) ListThreads(userID string) []message.Thread {
	db.mu.RLock()
	defer db.mu.RUnlock()

	threads := make([]message.Thread, 0)
	for _, t := range db.threads {
		if !db.canSee(t, userID) {
			continue
		}
		thread := copyThread(t)
		thread.SenderName = db.userName(t.CreatedBy)
		if msgs := db.messages[t.ID]; len(msgs) > 0 {
			preview := []rune(msgs[len(msgs)-1].Content)
			if len(preview) > previewLen {
				preview = preview[:previewLen]
			}
			thread.Preview = string(preview)
		}
		thread.Unread = !contains(t.ReadBy, userID)
		threads = append(threads, thread)
	}
	sort.SliceStable(threads, func(i, j int) bool { return threads[i].LastMessageAt > threads[j].LastMessageAt })
	return threads
}

func (db *DB) CreateThread(senderID string, data message.NewThread) (message.Thread, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[data.RecipientID]; !ok {
		return message.Thread{}, ErrUnknownUser
	}
	now := db.now()
	t := &message.Thread{
		ID:            newID(),
		Subject:       data.Subject,
		Type:          message.ThreadMessage,
		CourseID:      data.CourseID,
		CreatedBy:     senderID,
		RecipientID:   data.RecipientID,
		Participants:  []string{senderID, data.RecipientID},
		ReadBy:        []string{senderID},
		CreatedAt:     now,
		LastMessageAt: now,
	}
	db.threads[t.ID] = t
	db.messages[t.ID] = []*message.Message{{
		ID:        newID(),
		ThreadID:  t.ID,
		SenderID:  senderID,
		Content:   data.Content,
		CreatedAt: now,
		ReadBy:    []string{senderID},
	}}
	return copyThread(t), nil
}

// ThreadMessages returns the messages of threadID in order and marks them read by userID.
func (db *DB) ThreadMessages(threadID, userID string) ([]message.Message, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.threads[threadID]
	if !ok || !db.canSee(t, userID) {
		return nil, ErrNotFound
	}
	if !contains(t.ReadBy, userID) {
		t.ReadBy = append(t.ReadBy, userID)
	}
	msgs := make([]message.Message, 0, len(db.messages[threadID]))
	for _, m := range db.messages[threadID] {
		if !contains(m.ReadBy, userID) {
			m.ReadBy = append(m.ReadBy, userID)
		}
		msg := *m
		msg.ReadBy = append(make([]string, 0, len(m.ReadBy)), m.ReadBy...)
		msg.SenderName = db.userName(m.SenderID)
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Reply appends a message; the thread becomes unread for everyone but the sender.
func (db *DB) Reply(threadID, senderID, content string) (message.Message, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.threads[threadID]
	if !ok || !db.canSee(t, senderID) {
		return message.Message{}, ErrNotFound
	}
	now := db.now()
	msg := &message.Message{
		ID:        newID(),
		ThreadID:  threadID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: now,
		ReadBy:    []string{senderID},
	}
	db.messages[threadID] = append(db.messages[threadID], msg)
	t.LastMessageAt = now
	if !contains(t.Participants, senderID) {
		t.Participants = append(t.Participants, senderID)
	}
	t.ReadBy = []string{senderID}

	cp := *msg
	cp.ReadBy = []string{senderID}
	cp.SenderName = db.userName(senderID)
	return cp, nil
}

func (db *DB) UnreadCount(userID string) int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var n int
	for _, t := range db.threads {
		if (t.RecipientID == userID || contains(t.Participants, userID)) && !contains(t.ReadBy, userID) {
			n++
		}
	}
	return n
}
