package store

const (
	createUser = `INSERT INTO users (email, name, auth_hash, encryption_salt, encrypted_vault_key, public_key, encrypted_private_key, is_admin)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING user_id, email, name, auth_hash, encryption_salt, encrypted_vault_key, public_key, encrypted_private_key, is_admin, created_at;`

	findUserByEmail = `SELECT user_id, email, name, auth_hash, encryption_salt, encrypted_vault_key, public_key, encrypted_private_key, is_admin, created_at
    FROM users
    WHERE email = $1;`

	findUserByID = `SELECT user_id, email, name, auth_hash, encryption_salt, encrypted_vault_key, public_key, encrypted_private_key, is_admin, created_at
    FROM users
    WHERE user_id = $1;`

	getVault = `SELECT user_id, ciphertext, updated_at
    FROM vault_blobs
    WHERE user_id = $1;`

	upsertVault = `INSERT INTO vault_blobs (user_id, ciphertext, updated_at)
    VALUES ($1, $2, now())
    ON CONFLICT (user_id) DO UPDATE SET ciphertext = EXCLUDED.ciphertext, updated_at = now()
    RETURNING user_id, ciphertext, updated_at;`

	createShare = `INSERT INTO contact_shares (sender_id, sender_email, recipient_email, item_type, item_ciphertext, wrapped_key)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING share_id, sender_id, sender_email, recipient_email, item_type, item_ciphertext, wrapped_key, created_at;`

	getShare = `SELECT share_id, sender_id, sender_email, recipient_email, item_type, item_ciphertext, wrapped_key, created_at
    FROM contact_shares
    WHERE share_id = $1;`

	listSharesForRecipient = `SELECT share_id, sender_id, sender_email, recipient_email, item_type, item_ciphertext, wrapped_key, created_at
    FROM contact_shares
    WHERE recipient_email = $1
    ORDER BY created_at;`

	deleteShare = `DELETE FROM contact_shares WHERE share_id = $1;`

	createSession = `INSERT INTO access_sessions (session_id, grant_id, user_id, session_token, logged_in_at, last_activity_at)
    VALUES ($1, $2, $3, $4, $5, $5)
    RETURNING session_id, grant_id, user_id, session_token, logged_in_at, last_activity_at, logged_out_at, logout_reason;`

	getSession = `SELECT session_id, grant_id, user_id, session_token, logged_in_at, last_activity_at, logged_out_at, logout_reason
    FROM access_sessions
    WHERE session_id = $1;`

	closeSessionsForGrant = `UPDATE access_sessions
    SET logged_out_at = $3, logout_reason = $2
    WHERE grant_id = $1 AND logged_out_at IS NULL;`

	closeIdleSessions = `UPDATE access_sessions
    SET logged_out_at = now(), logout_reason = $1
    WHERE logged_out_at IS NULL AND last_activity_at < $2;`

	touchSession = `UPDATE access_sessions
    SET last_activity_at = $2
    WHERE session_id = $1 AND logged_out_at IS NULL;`

	appendAuditEvent = `INSERT INTO audit_events (grant_id, session_id, actor_id, event_type, details)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING event_id, grant_id, session_id, actor_id, event_type, details, created_at;`

	listAuditEventsForGrant = `SELECT event_id, grant_id, session_id, actor_id, event_type, details, created_at
    FROM audit_events
    WHERE grant_id = $1
    ORDER BY event_id;`

	upsertWill = `INSERT INTO digital_will_configs (owner_id, owner_email, condition, action, beneficiary_email, updated_at)
    VALUES ($1, $2, $3, $4, $5, now())
    ON CONFLICT (owner_id) DO UPDATE
    SET condition = EXCLUDED.condition, action = EXCLUDED.action, beneficiary_email = EXCLUDED.beneficiary_email, updated_at = now()
    RETURNING owner_id, owner_email, condition, action, beneficiary_email, updated_at;`

	getWillByEmail = `SELECT owner_id, owner_email, condition, action, beneficiary_email, updated_at
    FROM digital_will_configs
    WHERE owner_email = $1;`

	createEmergencyRequest = `INSERT INTO emergency_requests (request_id, requester_email, target_user_email, request_type, proof_document_url)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING request_id, requester_email, target_user_email, request_type, proof_document_url, status, admin_notes, granted_vault_data, created_at, decided_at, decided_by;`

	getEmergencyRequest = `SELECT request_id, requester_email, target_user_email, request_type, proof_document_url, status, admin_notes, granted_vault_data, created_at, decided_at, decided_by
    FROM emergency_requests
    WHERE request_id = $1;`

	listEmergencyRequests = `SELECT request_id, requester_email, target_user_email, request_type, proof_document_url, status, admin_notes, granted_vault_data, created_at, decided_at, decided_by
    FROM emergency_requests
    WHERE ($1 = '' OR status = $1)
    ORDER BY created_at;`

	// The WHERE status = 'pending' predicate is the idempotence guard:
	// a second decision matches zero rows and surfaces ErrStateConflict.
	decideEmergencyRequest = `UPDATE emergency_requests
    SET status = $2, admin_notes = $3, decided_by = $4, decided_at = now(),
        granted_vault_data = COALESCE($5, granted_vault_data)
    WHERE request_id = $1 AND status = 'pending'
    RETURNING request_id, requester_email, target_user_email, request_type, proof_document_url, status, admin_notes, granted_vault_data, created_at, decided_at, decided_by;`
)
