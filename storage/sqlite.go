package storage

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/teranos/mmgen/db"
	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/model"
	"github.com/teranos/mmgen/version"
)

// Meta describes an imported model.
type Meta struct {
	Source        string
	FormatVersion string
	ImportedAt    time.Time
}

// SaveDB replaces the model stored in database with store. The whole import
// is one transaction.
func SaveDB(ctx context.Context, database *sql.DB, store *model.ElementFactory, source string) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return db.Wrap(err, "begin import")
	}
	if err := saveTx(ctx, tx, store, source); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return db.Wrap(err, "commit import")
	}
	return nil
}

func saveTx(ctx context.Context, tx *sql.Tx, store *model.ElementFactory, source string) error {
	// Children before parents so foreign keys never dangle.
	for _, table := range []string{"operations", "properties", "generalizations", "associations", "classes", "model_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return db.Wrap(err, "clear "+table)
		}
	}

	meta := [][2]string{
		{"source", source},
		{"format_version", version.ModelFormat},
		{"imported_at", time.Now().UTC().Format(time.RFC3339)},
	}
	for _, kv := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO model_meta (key, value) VALUES (?, ?)", kv[0], kv[1]); err != nil {
			return db.Wrap(err, "write model_meta")
		}
	}

	classes := store.SelectClasses(nil)
	for i, cls := range classes {
		if _, err := tx.ExecContext(ctx, "INSERT INTO classes (id, name, position) VALUES (?, ?, ?)", cls.ID, cls.Name, i); err != nil {
			return db.Wrap(err, "insert class "+cls.ID)
		}
	}

	for i, a := range store.Associations() {
		if _, err := tx.ExecContext(ctx, "INSERT INTO associations (id, name, position) VALUES (?, ?, ?)", a.ID, a.Name, i); err != nil {
			return db.Wrap(err, "insert association "+a.ID)
		}
	}

	for _, cls := range classes {
		for i, g := range cls.Generalizations {
			if g.General == nil {
				continue
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO generalizations (id, specific_id, general_id, position) VALUES (?, ?, ?, ?)",
				g.ID, cls.ID, g.General.ID, i)
			if err != nil {
				return db.Wrap(err, "insert generalization "+g.ID)
			}
		}
		for i, p := range cls.Attributes {
			if err := insertProperty(ctx, tx, p, cls.ID, i); err != nil {
				return err
			}
		}
		for i, o := range cls.Operations {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO operations (id, class_id, name, position) VALUES (?, ?, ?, ?)",
				o.ID, cls.ID, o.Name, i)
			if err != nil {
				return db.Wrap(err, "insert operation "+o.ID)
			}
		}
	}

	for _, a := range store.Associations() {
		if a.OwnedEnd == nil {
			continue
		}
		var classID interface{}
		if a.OwnedEnd.Class != nil {
			classID = a.OwnedEnd.Class.ID
		}
		if err := insertProperty(ctx, tx, a.OwnedEnd, classID, -1); err != nil {
			return err
		}
	}
	return nil
}

// insertProperty writes p. attrIndex < 0 marks an association-owned end.
func insertProperty(ctx context.Context, tx *sql.Tx, p *model.Property, classID interface{}, attrIndex int) error {
	var assocID, attrIdx, endIdx interface{}
	if attrIndex >= 0 {
		attrIdx = attrIndex
	}
	if p.Association != nil {
		assocID = p.Association.ID
		for i, end := range p.Association.MemberEnds {
			if end == p {
				endIdx = i
				break
			}
		}
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO properties
		(id, class_id, name, type_value, upper_value, association_id, owned, attr_index, end_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, classID, p.Name, p.TypeValue, p.UpperValue, assocID, p.Owned, attrIdx, endIdx)
	if err != nil {
		return db.Wrap(err, "insert property "+p.ID)
	}
	return nil
}

// LoadDB reads the model stored in database.
func LoadDB(ctx context.Context, database *sql.DB) (*model.ElementFactory, *Meta, error) {
	meta, err := loadMeta(ctx, database)
	if err != nil {
		return nil, nil, err
	}
	if err := checkStoredVersion(meta.FormatVersion); err != nil {
		return nil, nil, err
	}

	f := model.NewElementFactory()
	classes := make(map[string]*model.Class)
	associations := make(map[string]*model.Association)

	err = query(ctx, database, "SELECT id, name FROM classes ORDER BY position", func(rows *sql.Rows) error {
		cls := &model.Class{}
		if err := rows.Scan(&cls.ID, &cls.Name); err != nil {
			return err
		}
		classes[cls.ID] = cls
		return f.Add(cls)
	})
	if err != nil {
		return nil, nil, err
	}

	err = query(ctx, database, "SELECT id, name FROM associations ORDER BY position", func(rows *sql.Rows) error {
		a := &model.Association{}
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return err
		}
		associations[a.ID] = a
		return f.Add(a)
	})
	if err != nil {
		return nil, nil, err
	}

	err = query(ctx, database, `SELECT g.id, g.specific_id, g.general_id FROM generalizations g
		JOIN classes c ON c.id = g.specific_id ORDER BY c.position, g.position`, func(rows *sql.Rows) error {
		var id, specificID, generalID string
		if err := rows.Scan(&id, &specificID, &generalID); err != nil {
			return err
		}
		_, err := f.Generalize(id, classes[specificID], classes[generalID])
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	type memberEnd struct {
		index int
		prop  *model.Property
	}
	ends := make(map[*model.Association][]memberEnd)

	err = query(ctx, database, `SELECT id, class_id, name, type_value, upper_value, association_id, owned, end_index
		FROM properties ORDER BY class_id, attr_index`, func(rows *sql.Rows) error {
		p := &model.Property{}
		var classID, assocID sql.NullString
		var endIndex sql.NullInt64
		if err := rows.Scan(&p.ID, &classID, &p.Name, &p.TypeValue, &p.UpperValue, &assocID, &p.Owned, &endIndex); err != nil {
			return err
		}
		if classID.Valid {
			p.Class = classes[classID.String]
		}
		if assocID.Valid {
			a, ok := associations[assocID.String]
			if !ok {
				return errors.NewInvalidModelError("property %q references unknown association %q", p.ID, assocID.String)
			}
			p.Association = a
			ends[a] = append(ends[a], memberEnd{index: int(endIndex.Int64), prop: p})
			if p.Owned {
				a.OwnedEnd = p
			}
		}
		if !p.Owned && p.Class != nil {
			p.Class.Attributes = append(p.Class.Attributes, p)
		}
		return f.Add(p)
	})
	if err != nil {
		return nil, nil, err
	}
	for a, list := range ends {
		sort.SliceStable(list, func(i, j int) bool { return list[i].index < list[j].index })
		for _, e := range list {
			a.MemberEnds = append(a.MemberEnds, e.prop)
		}
	}

	err = query(ctx, database, `SELECT o.id, o.class_id, o.name FROM operations o
		JOIN classes c ON c.id = o.class_id ORDER BY c.position, o.position`, func(rows *sql.Rows) error {
		var classID string
		o := &model.Operation{}
		if err := rows.Scan(&o.ID, &classID, &o.Name); err != nil {
			return err
		}
		return f.AddOperation(classes[classID], o)
	})
	if err != nil {
		return nil, nil, err
	}

	return f, meta, nil
}

func loadMeta(ctx context.Context, database *sql.DB) (*Meta, error) {
	meta := &Meta{}
	err := query(ctx, database, "SELECT key, value FROM model_meta", func(rows *sql.Rows) error {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		switch key {
		case "source":
			meta.Source = value
		case "format_version":
			meta.FormatVersion = value
		case "imported_at":
			t, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return errors.Wrapf(err, "invalid imported_at %q", value)
			}
			meta.ImportedAt = t
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if meta.FormatVersion == "" {
		return nil, errors.WithHint(
			errors.New("database holds no imported model"),
			"run `mmgen db import SOURCE --db PATH` first")
	}
	return meta, nil
}

// query runs stmt and calls scan for every row.
func query(ctx context.Context, database *sql.DB, stmt string, scan func(*sql.Rows) error) error {
	rows, err := database.QueryContext(ctx, stmt)
	if err != nil {
		return db.Wrap(err, "query")
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return errors.Wrap(err, "scan model row")
		}
	}
	return db.Wrap(rows.Err(), "iterate rows")
}
