package constants

const USER_AGENT = "laurel/1.0 (+https://github.com/Eknes/laurel)"
