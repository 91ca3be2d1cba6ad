package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/rfile/internal/client/session"
)

func (a *App) Ping(ctx context.Context) error {
	if err := a.api.Ping(ctx); err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println("Server is up")
	return nil
}

func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	cb, err := a.api.Register(ctx, userName, string(password))
	if err != nil {
		log.Println(err.Error())
		return err
	}

	a.setToken(cb)
	fmt.Println("Registered")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	cb, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		log.Println(err.Error())
		return err
	}

	a.setToken(cb)
	fmt.Println("Logged in")
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	cb, err := a.api.Refresh(ctx, a.token)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	a.setToken(cb)
	fmt.Println("Session refreshed")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.token = nil
	if err := session.Clear(a.config.SessionFile); err != nil {
		log.Println(err.Error())
		return err
	}
	fmt.Println("Logged out")
	return nil
}
