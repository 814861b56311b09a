package main

import (
	"fmt"

	"github.com/fwojciec/serpwatch"
)

// Run executes the keywords add command.
func (c *KeywordsAddCmd) Run(deps *Dependencies) error {
	for _, text := range c.Texts {
		kw, err := deps.Keywords.AddKeyword(deps.Ctx, text)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Added keyword %q\n", kw.Text)
	}
	return nil
}

// Run executes the keywords remove command.
func (c *KeywordsRemoveCmd) Run(deps *Dependencies) error {
	for _, text := range c.Texts {
		if err := deps.Keywords.SetKeywordActive(deps.Ctx, text, false); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Removed keyword %q\n", text)
	}
	return nil
}

// Run executes the keywords list command.
func (c *KeywordsListCmd) Run(deps *Dependencies) error {
	keywords, err := deps.Keywords.ActiveKeywords(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpwatch.ErrorMessage(err))
		return err
	}

	if len(keywords) == 0 {
		fmt.Fprintln(deps.Stdout, "No keywords found. Use 'serpwatch keywords add' to track one.")
		return nil
	}

	for _, kw := range keywords {
		fmt.Fprintln(deps.Stdout, kw)
	}
	return nil
}
