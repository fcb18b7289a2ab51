package push

// BuildMessageBlocks is exported for testing
var BuildMessageBlocks = buildMessageBlocks
