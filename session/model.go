package session

// UserSummary is a point-in-time projection of the external account
// entity. The account record itself is owned by the credential store;
// a summary is copied into a [Snapshot] at login and never written
// back.
type UserSummary struct {
	ID          string
	Username    string
	DisplayName string
	Role        string
	Active      bool
	Scope       string
}

// Snapshot is the persisted "who is currently authenticated" record
// for one client context, plus its absolute expiration. Timestamps
// are Unix seconds.
//
// Invariant: ExpiresAt > LastActivity. A stored snapshot violating
// this reads back as expired.
type Snapshot struct {
	User         UserSummary
	ExpiresAt    int64
	LastActivity int64
}
