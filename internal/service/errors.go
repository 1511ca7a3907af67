package service

import "errors"

var (
	// ErrNotRegistered rejects actions from viewers without an identity record.
	// Nothing is mutated when it is returned.
	ErrNotRegistered = errors.New("viewer is not a registered participant")

	// ErrNotOwner rejects wish mutations by anyone but the creator.
	ErrNotOwner = errors.New("wish belongs to another user")

	// ErrWishNotFound is returned for mutations against a missing wish.
	ErrWishNotFound = errors.New("wish not found")

	// ErrRecipientBlocked is returned by Messenger implementations when the
	// recipient has blocked the sender. Treated as delivered-enough: logged,
	// never propagated to the action that triggered the send.
	ErrRecipientBlocked = errors.New("recipient has blocked the sender")
)
