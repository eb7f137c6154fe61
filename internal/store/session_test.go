package store

import "testing"

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSessionStore(db)

	userID := insertTestUser(t, db, "user@example.com")

	sess, err := ss.Create(userID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.UserID != userID {
		t.Fatalf("got = %v, want user %d", got, userID)
	}

	if err := ss.Delete(sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	gone, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if gone != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionDeleteForUser(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSessionStore(db)

	userID := insertTestUser(t, db, "user@example.com")
	otherID := insertTestUser(t, db, "other@example.com")

	first, _ := ss.Create(userID)
	second, _ := ss.Create(userID)
	theirs, _ := ss.Create(otherID)

	if err := ss.DeleteForUser(userID); err != nil {
		t.Fatalf("delete for user: %v", err)
	}

	for _, token := range []string{first.Token, second.Token} {
		if sess, _ := ss.GetByToken(token); sess != nil {
			t.Error("expected user's sessions to be gone")
		}
	}
	if sess, _ := ss.GetByToken(theirs.Token); sess == nil {
		t.Error("other user's session should survive")
	}
}

func TestSessionUnknownToken(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSessionStore(db)

	sess, err := ss.GetByToken("deadbeef")
	if err != nil {
		t.Fatalf("get unknown token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for unknown token")
	}
}
