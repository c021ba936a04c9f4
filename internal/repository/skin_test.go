package repository

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var skinCols = []string{"id", "name", "alias", "category", "symptoms", "causes", "treatment", "prevention", "department", "contagious", "description"}

func TestSkin_CountAndAt(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewSkinRepo(mock)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM skin_diseases`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	n, err := repo.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	mock.ExpectQuery(`FROM skin_diseases ORDER BY id LIMIT 1 OFFSET \$1`).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows(skinCols).
			AddRow(int64(2), "湿疹", "", "炎症性", "瘙痒", "", "", "", "皮肤科", "否", ""))
	d, err := repo.At(ctx, 1)
	assert.NoError(t, err)
	if assert.NotNil(t, d) {
		assert.Equal(t, int64(2), d.ID)
		assert.Equal(t, "湿疹", d.Name)
		assert.Equal(t, "否", d.Contagious)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkin_Random_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`ORDER BY random\(\) LIMIT 1`).WillReturnRows(pgxmock.NewRows(skinCols))
	d, err := NewSkinRepo(mock).Random(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, d)
}
