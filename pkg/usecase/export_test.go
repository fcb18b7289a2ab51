package usecase

// Recipients is exported for testing
var Recipients = recipients
