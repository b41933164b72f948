package models

import "github.com/pkg/errors"

var (
	ErrNotFound               = errors.New("запись не найдена")
	ErrForbidden              = errors.New("нет доступа")
	ErrInvalidState           = errors.New("операция недопустима в текущем статусе заявки")
	ErrNoApproversConfigured  = errors.New("в компании не настроены согласующие")
	ErrPolicyNotAvailable     = errors.New("политика недоступна")
	ErrNotAssignedApprover    = errors.New("пользователь не назначен согласующим по заявке")
	ErrConflict               = errors.New("заявка изменена параллельной операцией")
	ErrUnknownRole            = errors.New("неизвестная роль")
	ErrUnknownTripType        = errors.New("неизвестный тип поездки")
	ErrAlreadyDecided         = errors.New("решение по задаче согласования уже принято")
	ErrInviteNotAvailable     = errors.New("приглашение недоступно")
	ErrEmailAlreadyRegistered = errors.New("пользователь с такой почтой уже зарегистрирован")
)
