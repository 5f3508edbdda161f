package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/dmitrijs2005/storygen/internal/client/events"
	"github.com/dmitrijs2005/storygen/internal/client/models"
	"github.com/dmitrijs2005/storygen/internal/client/services"
	"github.com/dmitrijs2005/storygen/internal/common"
)

// getSimpleText, getPassword and getChoice are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getChoice     = GetChoice
)

// Login prompts for an email and password and signs in. A pending upload is
// replayed by the session store before Login returns.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, models.LoginFields{Email: email, Password: string(password)}); err != nil {
		return err
	}
	a.printSignedIn()
	return nil
}

// Signup prompts for the account details and creates the account.
func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter your name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	org, err := getSimpleText(a.reader, "Enter organisation (optional)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.session.Signup(ctx, models.SignupFields{
		Name:         name,
		Email:        email,
		Organisation: org,
		Password:     string(password),
	})
	if err != nil {
		return err
	}
	a.printSignedIn()
	return nil
}

func (a *App) printSignedIn() {
	if id := a.session.Identity(); id != nil {
		printlnFn("Signed in as", id.DisplayName())
	}
}

// Logout forgets the stored credential. It never fails.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Signed out.")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	id := a.session.Identity()
	if id == nil {
		printlnFn("Not signed in.")
		return nil
	}
	printlnFn("Name:", id.Name)
	printlnFn("Email:", id.Email)
	if id.Organisation != "" {
		printlnFn("Organisation:", id.Organisation)
	}
	return nil
}

// resolveAuthRequest opens the credential prompt when something asked for
// it. The prompt stays open until a sign in succeeds or the user cancels;
// cancelling keeps any pending action for the next successful sign in.
func (a *App) resolveAuthRequest(ctx context.Context) error {
	if a.authRequest == nil {
		return nil
	}
	ev := *a.authRequest
	a.authRequest = nil

	if ev.Reason == events.ReasonUnauthorized {
		printlnFn("Your session has expired. Please sign in again.")
	} else {
		printlnFn("Please sign in to continue.")
	}

	for {
		choice, err := getChoice(a.reader, "Sign in with", []string{"login", "signup", "cancel"}, os.Stdout)
		if errors.Is(err, errUnknownChoice) {
			printlnFn(err.Error())
			continue
		}
		if err != nil {
			return err
		}

		switch choice {
		case "login":
			err = a.Login(ctx)
		case "signup":
			err = a.Signup(ctx)
		default:
			printlnFn("Cancelled.")
			return nil
		}
		if err == nil {
			return nil
		}
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return err
		}
		printlnFn("Error:", services.UserMessage(err))
	}
}
