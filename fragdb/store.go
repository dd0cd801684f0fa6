/*
 * store.go, part of goConf.
 *
 * Copyright 2021 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package fragdb keeps ring system conformers in a SQLite database, so they can be reused
//by different runs.
package fragdb

import (
	"bytes"
	"context"
	"database/sql"

	chem "github.com/rmera/goconf"
	"github.com/rmera/goconf/chemgraph"
	"github.com/rmera/goconf/confgen"
	"github.com/rmera/goconf/confio"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS fragments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	key TEXT NOT NULL,
	atoms INTEGER NOT NULL,
	conformers INTEGER NOT NULL,
	data JSON NOT NULL,
	created DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS fragments_key ON fragments(key);
`

//Store is a fragment database.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

//Open opens, or creates, the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, newError(ErrDatabase, err, "Open")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, newError(ErrDatabase, err, "Open")
	}
	return &Store{db: db, log: zap.L().Named("fragdb")}, nil
}

//Close closes the database.
func (S *Store) Close() error {
	return S.db.Close()
}

func encode(f confgen.Fragment) ([]byte, error) {
	mol, err := chem.NewMolecule(f.Topology, f.Conformers)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := confio.WriteJSON(&buf, mol); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (confgen.Fragment, error) {
	mol, err := confio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return confgen.Fragment{}, err
	}
	return confgen.Fragment{Topology: mol.Topology, Conformers: mol.Coords}, nil
}

//contains returns true if a fragment isomorphic to top is stored under key.
func contains(ctx context.Context, tx *sql.Tx, key string, top *chem.Topology) (bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT data FROM fragments WHERE key = ?`, key)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return false, err
		}
		f, err := decode(data)
		if err != nil {
			return false, err
		}
		if _, ok := chemgraph.Isomorphism(top, f.Topology); ok {
			return true, nil
		}
	}
	return false, rows.Err()
}

//Save stores the fragments of L that are not yet in the database. It returns the number
//of fragments added.
func (S *Store) Save(ctx context.Context, L *confgen.FragmentLibrary) (int, error) {
	tx, err := S.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, newError(ErrDatabase, err, "Save")
	}
	defer tx.Rollback()
	added := 0
	for _, f := range L.Fragments() {
		key := confgen.FragmentKey(f.Topology)
		found, err := contains(ctx, tx, key, f.Topology)
		if err != nil {
			return 0, newError(ErrDatabase, err, "Save")
		}
		if found {
			continue
		}
		data, err := encode(f)
		if err != nil {
			return 0, newError(ErrEncoding, err, "Save")
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO fragments (key, atoms, conformers, data) VALUES (?, ?, ?, ?)`,
			key, f.Topology.Len(), len(f.Conformers), data); err != nil {
			return 0, newError(ErrDatabase, err, "Save")
		}
		added++
	}
	if err := tx.Commit(); err != nil {
		return 0, newError(ErrDatabase, err, "Save")
	}
	S.log.Debug("saved fragments", zap.Int("added", added))
	return added, nil
}

//Load adds every stored fragment to L, and returns the number of fragments that were
//not already in L.
func (S *Store) Load(ctx context.Context, L *confgen.FragmentLibrary) (int, error) {
	rows, err := S.db.QueryContext(ctx, `SELECT id, data FROM fragments ORDER BY id`)
	if err != nil {
		return 0, newError(ErrDatabase, err, "Load")
	}
	defer rows.Close()
	added := 0
	for rows.Next() {
		var id int64
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return added, newError(ErrDatabase, err, "Load")
		}
		f, err := decode(data)
		if err != nil {
			S.log.Warn("skipping corrupted fragment", zap.Int64("id", id), zap.Error(err))
			continue
		}
		if L.Add(f.Topology, f.Conformers) {
			added++
		}
	}
	if err := rows.Err(); err != nil {
		return added, newError(ErrDatabase, err, "Load")
	}
	S.log.Debug("loaded fragments", zap.Int("added", added))
	return added, nil
}

//Len returns the number of stored fragments.
func (S *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := S.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragments`).Scan(&n); err != nil {
		return 0, newError(ErrDatabase, err, "Len")
	}
	return n, nil
}
