// Package store persists identity records and their notification
// events in SQLite. Record fields are stored byte-exactly: fixed-width
// little-endian blobs in the order the record lays them out, so any
// reader of the file can reconstruct the same bytes the engine hashed.
package store

import (
	"database/sql"
	"fmt"

	"github.com/danielpatrickdp/agent-identity/go-engine/internal/identity"
	"github.com/danielpatrickdp/agent-identity/go-engine/internal/keys"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS identity_records (
	address               BLOB PRIMARY KEY,
	owner                 BLOB NOT NULL,
	bump                  INTEGER NOT NULL,
	dimension_count       INTEGER NOT NULL,
	vocabulary_hash       BLOB NOT NULL,
	dimension_names       BLOB NOT NULL,
	weights               BLOB NOT NULL,
	self_model            BLOB NOT NULL,
	logical_time          INTEGER NOT NULL,
	declaration_count     INTEGER NOT NULL,
	declarations          BLOB NOT NULL,
	genesis_hash          BLOB NOT NULL,
	current_hash          BLOB NOT NULL,
	chain_root            BLOB NOT NULL,
	pivotal_count         INTEGER NOT NULL,
	pivotal_hashes        BLOB NOT NULL,
	pivotal_impacts       BLOB NOT NULL,
	pivotal_timestamps    BLOB NOT NULL,
	continuity_score      INTEGER NOT NULL,
	coherence_score       INTEGER NOT NULL,
	stability_score       INTEGER NOT NULL,
	created_at            INTEGER NOT NULL,
	updated_at            INTEGER NOT NULL,
	last_declaration_slot INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
	event_id     TEXT PRIMARY KEY,
	address      BLOB NOT NULL,
	kind         TEXT NOT NULL,
	payload_json TEXT NOT NULL,
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_event_log_address ON event_log(address, created_at);
`

// #endregion schema

// #region store
// Store manages identity records in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region save
// Save upserts a record at its address.
func (s *Store) Save(r *identity.Record) error {
	_, err := s.db.Exec(
		`INSERT INTO identity_records (
			address, owner, bump, dimension_count, vocabulary_hash, dimension_names,
			weights, self_model, logical_time, declaration_count, declarations,
			genesis_hash, current_hash, chain_root,
			pivotal_count, pivotal_hashes, pivotal_impacts, pivotal_timestamps,
			continuity_score, coherence_score, stability_score,
			created_at, updated_at, last_declaration_slot
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			owner = excluded.owner,
			bump = excluded.bump,
			dimension_count = excluded.dimension_count,
			vocabulary_hash = excluded.vocabulary_hash,
			dimension_names = excluded.dimension_names,
			weights = excluded.weights,
			self_model = excluded.self_model,
			logical_time = excluded.logical_time,
			declaration_count = excluded.declaration_count,
			declarations = excluded.declarations,
			genesis_hash = excluded.genesis_hash,
			current_hash = excluded.current_hash,
			chain_root = excluded.chain_root,
			pivotal_count = excluded.pivotal_count,
			pivotal_hashes = excluded.pivotal_hashes,
			pivotal_impacts = excluded.pivotal_impacts,
			pivotal_timestamps = excluded.pivotal_timestamps,
			continuity_score = excluded.continuity_score,
			coherence_score = excluded.coherence_score,
			stability_score = excluded.stability_score,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			last_declaration_slot = excluded.last_declaration_slot`,
		r.Address[:], r.Owner[:], r.Bump, r.DimensionCount, r.VocabularyHash[:],
		encodeDimensionNames(&r.DimensionNames),
		encodeU64Vector(&r.Weights), encodeU64Vector(&r.SelfModel),
		int64(r.Time), r.Declarations.Count, encodeDeclarations(&r.Declarations),
		r.GenesisHash[:], r.CurrentHash[:], r.ChainRoot.Root[:],
		r.PivotalCount, encodePivotalHashes(&r.PivotalHashes),
		encodePivotalImpacts(&r.PivotalImpacts), encodePivotalTimestamps(&r.PivotalTimestamps),
		int64(r.ContinuityScore), int64(r.CoherenceScore), int64(r.StabilityScore),
		r.CreatedAt, r.UpdatedAt, int64(r.LastDeclarationSlot),
	)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// #endregion save

// #region load
// Load reads the record at the given address.
func (s *Store) Load(address keys.RecordAddress) (*identity.Record, error) {
	var (
		r             identity.Record
		addr, owner   []byte
		vocab         []byte
		names         []byte
		weights       []byte
		selfModel     []byte
		logicalTime   int64
		declCount     uint32
		decls         []byte
		genesis       []byte
		current       []byte
		chainRoot     []byte
		pivotalHashes []byte
		pivotalImp    []byte
		pivotalTS     []byte
		continuity    int64
		coherenceV    int64
		stability     int64
		lastSlot      int64
	)

	err := s.db.QueryRow(
		`SELECT address, owner, bump, dimension_count, vocabulary_hash, dimension_names,
			weights, self_model, logical_time, declaration_count, declarations,
			genesis_hash, current_hash, chain_root,
			pivotal_count, pivotal_hashes, pivotal_impacts, pivotal_timestamps,
			continuity_score, coherence_score, stability_score,
			created_at, updated_at, last_declaration_slot
		 FROM identity_records WHERE address = ?`, address[:],
	).Scan(
		&addr, &owner, &r.Bump, &r.DimensionCount, &vocab, &names,
		&weights, &selfModel, &logicalTime, &declCount, &decls,
		&genesis, &current, &chainRoot,
		&r.PivotalCount, &pivotalHashes, &pivotalImp, &pivotalTS,
		&continuity, &coherenceV, &stability,
		&r.CreatedAt, &r.UpdatedAt, &lastSlot,
	)
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", address.Hex(), err)
	}

	copy(r.Address[:], addr)
	copy(r.Owner[:], owner)
	copy(r.VocabularyHash[:], vocab)
	decodeDimensionNames(names, &r.DimensionNames)
	decodeU64Vector(weights, &r.Weights)
	decodeU64Vector(selfModel, &r.SelfModel)
	r.Time = uint64(logicalTime)
	r.Declarations.Count = declCount
	decodeDeclarations(decls, &r.Declarations)
	copy(r.GenesisHash[:], genesis)
	copy(r.CurrentHash[:], current)
	copy(r.ChainRoot.Root[:], chainRoot)
	decodePivotalHashes(pivotalHashes, &r.PivotalHashes)
	decodePivotalImpacts(pivotalImp, &r.PivotalImpacts)
	decodePivotalTimestamps(pivotalTS, &r.PivotalTimestamps)
	r.ContinuityScore = uint64(continuity)
	r.CoherenceScore = uint64(coherenceV)
	r.StabilityScore = uint64(stability)
	r.LastDeclarationSlot = uint64(lastSlot)

	return &r, nil
}

// #endregion load

// #region delete
// DeleteRecord releases a record from storage. Its event log survives:
// closure is itself an indexed event.
func (s *Store) DeleteRecord(address keys.RecordAddress) error {
	res, err := s.db.Exec(`DELETE FROM identity_records WHERE address = ?`, address[:])
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s not found", address.Hex())
	}
	return nil
}

// #endregion delete

// #region list
// ListAddresses returns the addresses of all stored records, most
// recently updated first.
func (s *Store) ListAddresses() ([]keys.RecordAddress, error) {
	rows, err := s.db.Query(`SELECT address FROM identity_records ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var addrs []keys.RecordAddress
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		var a keys.RecordAddress
		copy(a[:], b)
		addrs = append(addrs, a)
	}
	return addrs, rows.Err()
}

// #endregion list
