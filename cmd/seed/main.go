// Command seed 写入演示数据：一个管理员、五个普通用户及其推文、回复、点赞与关注。
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Leon-Chun/twitter-fullstack-2020/config"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/repository"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/database"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/logger"
)

const (
	seedPassword   = "12345678"
	userCount      = 5
	tweetsPerUser  = 10
	repliesPerPost = 3
)

func main() {
	users := flag.Int("users", userCount, "number of regular users")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, "console"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("open database failed", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close(db)

	if err := seed(context.Background(), db, *users); err != nil {
		logger.Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
}

func seed(ctx context.Context, db *gorm.DB, n int) error {
	count, err := repository.NewUserRepository(db).Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("users already exist, skip seeding", zap.Int64("users", count))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		userRepo := repository.NewUserRepository(tx)
		tweetRepo := repository.NewTweetRepository(tx)
		replyRepo := repository.NewReplyRepository(tx)
		likeRepo := repository.NewLikeRepository(tx)
		followRepo := repository.NewFollowshipRepository(tx)

		root := &model.User{Account: "root", Email: "root@example.com", Name: "root", Password: string(hash), Role: model.RoleAdmin}
		if err := userRepo.Create(ctx, root); err != nil {
			return fmt.Errorf("create root: %w", err)
		}

		users := make([]*model.User, n)
		for i := range users {
			name := fmt.Sprintf("user%d", i+1)
			users[i] = &model.User{
				Account:      name,
				Email:        name + "@example.com",
				Name:         name,
				Introduction: fmt.Sprintf("Hi, I am %s.", name),
				Password:     string(hash),
				Role:         model.RoleUser,
			}
			if err := userRepo.Create(ctx, users[i]); err != nil {
				return fmt.Errorf("create %s: %w", name, err)
			}
		}

		var tweets []*model.Tweet
		for _, u := range users {
			for j := 0; j < tweetsPerUser; j++ {
				t := &model.Tweet{UserID: u.ID, Description: fmt.Sprintf("%s tweet #%d", u.Account, j+1)}
				if err := tweetRepo.Create(ctx, t); err != nil {
					return fmt.Errorf("create tweet: %w", err)
				}
				tweets = append(tweets, t)
			}
		}

		for _, t := range tweets {
			for k := 0; k < repliesPerPost; k++ {
				author := users[rand.IntN(len(users))]
				r := &model.Reply{UserID: author.ID, TweetID: t.ID, Comment: fmt.Sprintf("reply from %s", author.Account)}
				if err := replyRepo.Create(ctx, r); err != nil {
					return fmt.Errorf("create reply: %w", err)
				}
			}
			// 每个用户以 1/3 概率点赞
			for _, u := range users {
				if rand.IntN(3) != 0 {
					continue
				}
				if _, err := likeRepo.Create(ctx, u.ID, t.ID); err != nil {
					return fmt.Errorf("create like: %w", err)
				}
			}
		}

		follows := 0
		for _, a := range users {
			for _, b := range users {
				if a.ID == b.ID || rand.IntN(2) == 0 {
					continue
				}
				if err := followRepo.Create(ctx, a.ID, b.ID); err != nil {
					return fmt.Errorf("create followship: %w", err)
				}
				follows++
			}
		}

		logger.Info("seeded",
			zap.Int("users", len(users)+1),
			zap.Int("tweets", len(tweets)),
			zap.Int("replies", len(tweets)*repliesPerPost),
			zap.Int("followships", follows),
		)
		return nil
	})
}
