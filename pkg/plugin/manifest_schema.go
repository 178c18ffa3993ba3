package plugin

// ManifestSchema is the JSON Schema for plugin.json validation
const ManifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "packageName"],
  "properties": {
    "name": {
      "type": "string",
      "minLength": 1,
      "description": "Human-readable plugin name"
    },
    "packageName": {
      "type": "string",
      "pattern": "^[A-Za-z0-9_]+(\\.[A-Za-z0-9_-]+)*$",
      "description": "Unique reverse-domain package name"
    },
    "manufacturer": { "type": "string" },
    "version": {
      "type": "string",
      "description": "Semver version, defaults to 1.0.0"
    },
    "secret": { "type": "string" },
    "databaseKey": { "type": "string" },
    "description": { "type": "string" },
    "homepageUrl": { "type": "string" },
    "icon": { "type": "string" },
    "settingUri": { "type": "string" },
    "isSystemPlugin": { "type": "boolean" },
    "minHostVersion": { "type": "string" },
    "localizedNames": {
      "type": "object",
      "additionalProperties": { "type": "string" }
    },
    "localizedDescriptions": {
      "type": "object",
      "additionalProperties": { "type": "string" }
    },
    "dependencies": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["packageName"],
        "properties": {
          "packageName": { "type": "string", "minLength": 1 },
          "minVersion": { "type": "string" },
          "isOptional": { "type": "boolean" }
        }
      }
    },
    "fileList": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["relativePath"],
        "properties": {
          "relativePath": { "type": "string", "minLength": 1 },
          "fileType": {
            "type": "string",
            "enum": ["main", "library", "resource", "config", "localization", "other"]
          },
          "isMainAssembly": { "type": "boolean" },
          "isRequired": { "type": "boolean" }
        }
      }
    },
    "uninstallInfo": {
      "type": "object",
      "properties": {
        "allowUninstall": { "type": "boolean" },
        "title": { "type": "string" },
        "message": { "type": "string" },
        "localizedTitles": {
          "type": "object",
          "additionalProperties": { "type": "string" }
        },
        "localizedMessages": {
          "type": "object",
          "additionalProperties": { "type": "string" }
        },
        "preUninstallCommand": { "type": "string" },
        "postUninstallCommand": { "type": "string" }
      }
    }
  }
}`
