package domain

import "errors"

var ErrInvalidID = errors.New("invalid identifier")
var ErrBookNotFound = errors.New("book not found")
var ErrReviewNotFound = errors.New("review not found")
var ErrUserNotFound = errors.New("user not found")
var ErrNotBookOwner = errors.New("not authorized to modify this book")
var ErrDuplicateReview = errors.New("you have already reviewed this book")
var ErrInvalidRating = errors.New("rating must be a number between 1 and 5")
var ErrTitleRequired = errors.New("title is required")
var ErrEmailTaken = errors.New("email already in use")
var ErrMissingCredentials = errors.New("name, email, and password are required")
var ErrWeakPassword = errors.New("password must be at least 6 characters")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTooManyAttempts = errors.New("too many login attempts, try again later")
