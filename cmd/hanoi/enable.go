package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gwillem/hanoiarm/pkg/enable"
)

type EnableCommand struct {
	Off  bool `long:"off" description:"Clear the flag instead of setting it"`
	Show bool `long:"show" description:"Print the current value without changing it"`
}

func (c *EnableCommand) Execute(args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	client := newRedisClient(cfg.Redis)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	flag := enable.NewRedisFlag(client, cfg.Redis.EnableKey, true)
	if !c.Show {
		if err := flag.Set(ctx, !c.Off); err != nil {
			return err
		}
	}

	on, err := flag.Enabled(ctx)
	if err != nil {
		return err
	}
	if on {
		fmt.Println(onStyle.Render("enabled"))
	} else {
		fmt.Println(offStyle.Render("disabled"))
	}
	return nil
}
