package main

// General API documentation for swaggo. The rendered document lives in
// ./docs and is served under /swagger/ by binaries built with -tags=swagger.
//
// @title           astrod API
// @version         1.0
// @description     Local control API for model downloads and the inference engine.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @host      127.0.0.1:8765
// @BasePath  /
//
// @schemes http
