package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/testutil"
)

func TestSeed_Idempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	require.NoError(t, seed(ctx, db, 3))
	require.NoError(t, seed(ctx, db, 3))

	var users, admins, tweets, replies int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&admins).Error)
	require.NoError(t, db.Model(&model.Tweet{}).Count(&tweets).Error)
	require.NoError(t, db.Model(&model.Reply{}).Count(&replies).Error)

	assert.EqualValues(t, 4, users)
	assert.EqualValues(t, 1, admins)
	assert.EqualValues(t, 3*tweetsPerUser, tweets)
	assert.EqualValues(t, 3*tweetsPerUser*repliesPerPost, replies)
}
