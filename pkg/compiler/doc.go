// Package compiler builds semantic models from HCL deployment documents.
//
// Documents use Terraform block syntax. Each file is one document; the
// declarations of a document are exposed as [semantic.Symbol] values named by
// their address:
//
//	resource "aws_s3_bucket" "logs" {}   aws_s3_bucket.logs
//	data "aws_vpc" "main" {}             data.aws_vpc.main
//	module "network" {}                  module.network
//	variable "region" {}                 var.region
//	locals { prefix = "app" }            local.prefix
//	output "id" {}                       output.id
//
// Blocks with count or for_each declare collections.
//
// # Modules
//
// A module whose source is a local path ("./" or "../") is compiled together
// with the document that declares it. A source naming a directory resolves to
// the main.tf inside it. Every file is compiled once per [Compilation], no
// matter how many modules point at it. Missing files and module cycles are
// reported as diagnostics on the module declaration; such modules have no
// nested model. Registry and remote sources are kept as paths only.
//
// # Diagnostics
//
// Syntax errors, unnamed or badly named blocks, duplicate declarations and
// references to undeclared symbols are reported as diagnostics. They never make
// [Compile] fail; the parser recovers and whatever it could read is still
// compiled.
package compiler
