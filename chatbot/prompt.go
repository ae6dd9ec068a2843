package chatbot

// Greeting returns the text the receptionist opens a conversation with
func Greeting() string {
	return "Hello! I'm Sarah, the virtual receptionist for Bright Smile Dental. 😊\n\n" +
		"I can help you with:\n" +
		"• Checking appointment availability\n" +
		"• Booking or cancelling appointments\n" +
		"• Clinic hours, services & policies\n\n" +
		"How can I assist you today?"
}
