package handler

var Truncate = truncate
