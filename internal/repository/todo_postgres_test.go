package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaekwang-park/todo-resolver/internal/model"
)

const returning = " RETURNING id, name, description, completed, owner, created_at, updated_at"

var (
	fixedTime = time.Date(2026, 1, 24, 12, 0, 0, 0, time.UTC)
	later     = fixedTime.Add(time.Minute)
)

func todoRows() *sqlmock.Rows {
	return sqlmock.NewRows(todoColumns)
}

func newMockRepo(t *testing.T) (*PostgresTodoRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresTodo(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPostgresTodoRepository_Create(t *testing.T) {
	tests := map[string]struct {
		input  model.TodoInput
		expect func(sqlmock.Sqlmock)
		want   model.Todo
		err    error
	}{
		"name only": {
			input: model.TodoInput{Name: model.StringPtr("milk")},
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("INSERT INTO todos (id,name) VALUES ($1,$2)"+returning).
					WithArgs("id-1", "milk").
					WillReturnRows(todoRows().AddRow("id-1", "milk", nil, false, nil, fixedTime, fixedTime))
			},
			want: model.Todo{ID: "id-1", Name: "milk", CreatedAt: fixedTime, UpdatedAt: fixedTime},
		},
		"all fields": {
			input: model.TodoInput{
				Name:        model.StringPtr("milk"),
				Description: model.StringPtr("2 liters"),
				Completed:   boolPtr(true),
				Owner:       model.StringPtr("user-1"),
			},
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("INSERT INTO todos (completed,description,id,name,owner) VALUES ($1,$2,$3,$4,$5)"+returning).
					WithArgs(true, "2 liters", "id-1", "milk", "user-1").
					WillReturnRows(todoRows().AddRow("id-1", "milk", "2 liters", true, "user-1", fixedTime, fixedTime))
			},
			want: model.Todo{
				ID:          "id-1",
				Name:        "milk",
				Description: model.StringPtr("2 liters"),
				Completed:   true,
				Owner:       model.StringPtr("user-1"),
				CreatedAt:   fixedTime,
				UpdatedAt:   fixedTime,
			},
		},
		"database error": {
			input: model.TodoInput{Name: model.StringPtr("milk")},
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("INSERT INTO todos (id,name) VALUES ($1,$2)"+returning).
					WithArgs("id-1", "milk").
					WillReturnError(errors.New("db error"))
			},
			err: errors.New("failed to insert todo: db error"),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.expect(mock)

			got, err := repo.Create(context.Background(), "id-1", tt.input)
			if tt.err != nil {
				assert.EqualError(t, err, tt.err.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresTodoRepository_GetByID(t *testing.T) {
	const query = "SELECT id, name, description, completed, owner, created_at, updated_at FROM todos WHERE id = $1"

	tests := map[string]struct {
		expect func(sqlmock.Sqlmock)
		want   model.Todo
		errIs  error
	}{
		"found": {
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(query).
					WithArgs("abc").
					WillReturnRows(todoRows().AddRow("abc", "milk", nil, false, "user-1", fixedTime, later))
			},
			want: model.Todo{ID: "abc", Name: "milk", Owner: model.StringPtr("user-1"), CreatedAt: fixedTime, UpdatedAt: later},
		},
		"not found": {
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(query).WithArgs("abc").WillReturnRows(todoRows())
			},
			errIs: sql.ErrNoRows,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.expect(mock)

			got, err := repo.GetByID(context.Background(), "abc")
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresTodoRepository_List(t *testing.T) {
	const query = "SELECT id, name, description, completed, owner, created_at, updated_at FROM todos ORDER BY created_at, id"

	tests := map[string]struct {
		expect func(sqlmock.Sqlmock)
		want   []model.Todo
		err    bool
	}{
		"rows": {
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(query).WillReturnRows(todoRows().
					AddRow("a", "milk", nil, false, "user-1", fixedTime, fixedTime).
					AddRow("b", "eggs", "dozen", true, "user-2", later, later))
			},
			want: []model.Todo{
				{ID: "a", Name: "milk", Owner: model.StringPtr("user-1"), CreatedAt: fixedTime, UpdatedAt: fixedTime},
				{ID: "b", Name: "eggs", Description: model.StringPtr("dozen"), Completed: true, Owner: model.StringPtr("user-2"), CreatedAt: later, UpdatedAt: later},
			},
		},
		"empty table returns empty slice": {
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(query).WillReturnRows(todoRows())
			},
			want: []model.Todo{},
		},
		"database error": {
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(query).WillReturnError(errors.New("db error"))
			},
			err: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.expect(mock)

			got, err := repo.List(context.Background())
			if tt.err {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, got)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresTodoRepository_Update(t *testing.T) {
	tests := map[string]struct {
		columns map[string]any
		expect  func(sqlmock.Sqlmock)
		want    model.Todo
		errIs   error
	}{
		"supplied columns": {
			columns: map[string]any{"owner": "user-2", "completed": true},
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("UPDATE todos SET completed = $1, owner = $2, updated_at = now() WHERE id = $3"+returning).
					WithArgs(true, "user-2", "abc").
					WillReturnRows(todoRows().AddRow("abc", "milk", nil, true, "user-2", fixedTime, later))
			},
			want: model.Todo{ID: "abc", Name: "milk", Completed: true, Owner: model.StringPtr("user-2"), CreatedAt: fixedTime, UpdatedAt: later},
		},
		"no columns still refreshes updated_at": {
			columns: map[string]any{},
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("UPDATE todos SET updated_at = now() WHERE id = $1" + returning).
					WithArgs("abc").
					WillReturnRows(todoRows().AddRow("abc", "milk", nil, false, nil, fixedTime, later))
			},
			want: model.Todo{ID: "abc", Name: "milk", CreatedAt: fixedTime, UpdatedAt: later},
		},
		"missing row": {
			columns: map[string]any{"name": "bread"},
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("UPDATE todos SET name = $1, updated_at = now() WHERE id = $2"+returning).
					WithArgs("bread", "abc").
					WillReturnRows(todoRows())
			},
			errIs: sql.ErrNoRows,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.expect(mock)

			got, err := repo.Update(context.Background(), "abc", tt.columns)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresTodoRepository_Delete(t *testing.T) {
	const query = "DELETE FROM todos WHERE id = $1" + returning

	tests := map[string]struct {
		expect func(sqlmock.Sqlmock)
		want   model.Todo
		errIs  error
	}{
		"deleted": {
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(query).
					WithArgs("abc").
					WillReturnRows(todoRows().AddRow("abc", "milk", nil, false, nil, fixedTime, fixedTime))
			},
			want: model.Todo{ID: "abc", Name: "milk", CreatedAt: fixedTime, UpdatedAt: fixedTime},
		},
		"missing row": {
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(query).WithArgs("abc").WillReturnRows(todoRows())
			},
			errIs: sql.ErrNoRows,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.expect(mock)

			got, err := repo.Delete(context.Background(), "abc")
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

type handlerFunc func(ctx context.Context) (*sqlx.DB, error)

func (f handlerFunc) Handle(ctx context.Context) (*sqlx.DB, error) { return f(ctx) }

func TestHandlerStore_Todos(t *testing.T) {
	t.Run("binds repository to handle", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		handle := sqlx.NewDb(db, "sqlmock")

		store := NewHandlerStore(handlerFunc(func(ctx context.Context) (*sqlx.DB, error) {
			return handle, nil
		}))
		repo, err := store.Todos(context.Background())
		require.NoError(t, err)
		assert.Same(t, handle, repo.(*PostgresTodoRepository).db)
	})

	t.Run("propagates handle error", func(t *testing.T) {
		handleErr := errors.New("secret unavailable")
		store := NewHandlerStore(handlerFunc(func(ctx context.Context) (*sqlx.DB, error) {
			return nil, handleErr
		}))
		repo, err := store.Todos(context.Background())
		assert.ErrorIs(t, err, handleErr)
		assert.Nil(t, repo)
	})
}

func boolPtr(b bool) *bool {
	return &b
}
